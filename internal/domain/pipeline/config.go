package pipeline

// Config holds the global switches of a run. It is a value type and is read
// once when a run starts.
type Config struct {
	PromptAfterSteps bool
	BuildApps        bool
	BuildDir         string
}

// Select returns the steps that take part in a run with cfg, in declaration
// order. Optional application steps are dropped unless BuildApps is set.
func Select(steps []Step, cfg Config) []Step {
	selected := make([]Step, 0, len(steps))
	for _, s := range steps {
		if s.Optional && !cfg.BuildApps {
			continue
		}
		selected = append(selected, s)
	}
	return selected
}

func (c Config) checkpointAfter(s Step) bool {
	return c.PromptAfterSteps || s.Interactive
}
