package automation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/rdsim/internal/config"
	"github.com/san-kum/rdsim/internal/export"
	"github.com/san-kum/rdsim/internal/grayscott"
	"github.com/san-kum/rdsim/internal/metrics"
	"github.com/san-kum/rdsim/internal/sim"
)

var ErrInvalidScenario = errors.New("automation: invalid scenario")

// Scenario is a scripted sequence of actions against one engine.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Config      *config.Config `yaml:"config"`
	Actions     []Action       `yaml:"actions"`
}

// Action is one scenario step. Do selects which fields apply:
//
//	run      steps, sample_every
//	preset   preset
//	params   f, k (either may be omitted)
//	seed     x, y, radius, chemical, value
//	reset    -
//	clear    -
//	snapshot path, colormap
type Action struct {
	Do          string   `yaml:"do"`
	Steps       int      `yaml:"steps,omitempty"`
	SampleEvery int      `yaml:"sample_every,omitempty"`
	Preset      string   `yaml:"preset,omitempty"`
	F           *float64 `yaml:"f,omitempty"`
	K           *float64 `yaml:"k,omitempty"`
	X           int      `yaml:"x,omitempty"`
	Y           int      `yaml:"y,omitempty"`
	Radius      int      `yaml:"radius,omitempty"`
	Chemical    string   `yaml:"chemical,omitempty"`
	Value       *float64 `yaml:"value,omitempty"`
	Path        string   `yaml:"path,omitempty"`
	Colormap    string   `yaml:"colormap,omitempty"`
}

// StepReport records what one action did.
type StepReport struct {
	Index  int
	Do     string
	Result *sim.Result
	Path   string
}

// LoadScenario reads a scenario file. Missing config fields take the
// defaults of config.DefaultConfig.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	scenario := Scenario{Config: config.DefaultConfig()}
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

func (s *Scenario) Validate() error {
	if s.Config == nil {
		s.Config = config.DefaultConfig()
	}
	if err := s.Config.Validate(); err != nil {
		return err
	}
	if len(s.Actions) == 0 {
		return fmt.Errorf("%w: no actions", ErrInvalidScenario)
	}
	for i, a := range s.Actions {
		if err := a.validate(); err != nil {
			return fmt.Errorf("%w: action %d (%s): %v", ErrInvalidScenario, i+1, a.Do, err)
		}
	}
	return nil
}

func (a Action) validate() error {
	switch a.Do {
	case "run":
		if a.Steps <= 0 {
			return errors.New("steps must be positive")
		}
	case "preset":
		if _, err := config.ResolvePreset(a.Preset); err != nil {
			return err
		}
	case "params":
		if a.F == nil && a.K == nil {
			return errors.New("need f or k")
		}
	case "seed":
		if _, err := grayscott.ParseChemical(a.chemical()); err != nil {
			return err
		}
	case "snapshot":
		if a.Path == "" {
			return errors.New("path is required")
		}
		if a.Colormap != "" {
			if _, err := export.Lookup(a.Colormap); err != nil {
				return err
			}
		}
	case "reset", "clear":
	default:
		return fmt.Errorf("unknown action %q", a.Do)
	}
	return nil
}

func (a Action) chemical() string {
	if a.Chemical == "" {
		return "v"
	}
	return a.Chemical
}

func (a Action) value() float64 {
	if a.Value == nil {
		return 1
	}
	return *a.Value
}

// RunScenario builds an engine from the scenario config and applies every
// action in order. Snapshot paths are resolved against dir. Progress goes
// to out.
func RunScenario(ctx context.Context, s *Scenario, dir string, out io.Writer) ([]StepReport, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	eng, err := grayscott.New(s.Config.EngineConfig(nil))
	if err != nil {
		return nil, err
	}

	reports := make([]StepReport, 0, len(s.Actions))
	for i, a := range s.Actions {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		fmt.Fprintf(out, "Action %d/%d: %s\n", i+1, len(s.Actions), a.Do)

		rep, err := apply(ctx, eng, s.Config, a, dir)
		rep.Index, rep.Do = i, a.Do
		reports = append(reports, rep)
		if err != nil {
			return reports, fmt.Errorf("action %d (%s): %w", i+1, a.Do, err)
		}
	}
	return reports, nil
}

func apply(ctx context.Context, eng *grayscott.Engine, cfg *config.Config, a Action, dir string) (StepReport, error) {
	var rep StepReport
	switch a.Do {
	case "run":
		s := sim.New(eng)
		for _, m := range metrics.Standard() {
			s.AddMetric(m)
		}
		res, err := s.Run(ctx, sim.Config{Steps: a.Steps, SampleEvery: a.SampleEvery})
		rep.Result = res
		return rep, err
	case "preset":
		p, err := config.ResolvePreset(a.Preset)
		if err != nil {
			return rep, err
		}
		eng.ApplyPreset(p.ID)
	case "params":
		if a.F != nil {
			eng.SetFeed(*a.F)
		}
		if a.K != nil {
			eng.SetKill(*a.K)
		}
	case "seed":
		c, err := grayscott.ParseChemical(a.chemical())
		if err != nil {
			return rep, err
		}
		return rep, eng.AddChemical(a.X, a.Y, a.Radius, c, a.value())
	case "reset":
		eng.Reset()
	case "clear":
		eng.ClearWithSeeds()
	case "snapshot":
		name := a.Colormap
		if name == "" {
			name = cfg.Colormap
		}
		cm, err := export.Lookup(name)
		if err != nil {
			return rep, err
		}
		rep.Path = a.Path
		if !filepath.IsAbs(rep.Path) {
			rep.Path = filepath.Join(dir, rep.Path)
		}
		return rep, export.SavePNG(rep.Path, eng.V(), cm, cfg.Scale)
	}
	return rep, nil
}
