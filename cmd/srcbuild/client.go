package main

import (
	"context"
	"io"
	"os"

	"github.com/felixgeelhaar/srcbuild/internal/app"
	"github.com/felixgeelhaar/srcbuild/internal/domain/config"
	"github.com/felixgeelhaar/srcbuild/internal/domain/pipeline"
	"github.com/felixgeelhaar/srcbuild/internal/domain/report"
	"github.com/felixgeelhaar/srcbuild/internal/ports"
	"github.com/felixgeelhaar/srcbuild/internal/provider/apt"
	"github.com/felixgeelhaar/srcbuild/internal/tui"
)

type srcbuildClient interface {
	Plan(context.Context, config.Settings) (*app.Plan, error)
	Run(context.Context, *app.Plan) (*pipeline.RunResult, error)
	MissingPackages(context.Context, *app.Plan) ([]apt.Package, error)
	LastReport(context.Context, string) (*report.Report, error)
	PersistEnv(context.Context, config.Settings) (string, error)
	PrintPlan(*app.Plan, []apt.Package)
	PrintResults(*app.Plan, *pipeline.RunResult)
	PrintReport(*report.Report)
}

var newSrcbuild = func(out io.Writer, logger ports.Logger, prompter pipeline.Prompter) srcbuildClient {
	return app.New(out).WithLogger(logger).WithPrompter(prompter)
}

var newPrompter = func(yes bool) pipeline.Prompter {
	return tui.NewPrompter(os.Stdin, os.Stdout, yes)
}
