package packaging

import (
	"github.com/rs/zerolog/log"
)

// Step is one packaging lifecycle action.
type Step func() error

// AssetBuilder is the frontend surface the prebuild wrapper depends on.
type AssetBuilder interface {
	Build() error
	MissingTargets() []string
}

// Prebuild wraps a lifecycle step so the asset build runs first. Failures
// are swallowed unless the step is strict or any bundle target is still
// missing, in which case the original build error is returned. When the
// project is not a repo checkout and every target exists, the step runs
// directly; the shipped assets are already final.
func Prebuild(project *Project, builder AssetBuilder, strict bool, step Step) Step {
	return func() error {
		if !project.IsRepo() && len(builder.MissingTargets()) == 0 {
			return step()
		}

		if err := builder.Build(); err != nil {
			missing := builder.MissingTargets()
			if strict || len(missing) > 0 {
				log.Warn().Msg("rebuilding frontend assets failed")
				if len(missing) > 0 {
					log.Error().Strs("missing", missing).Msg("missing asset files")
				}
				return err
			}
			log.Warn().Err(err).Msg("rebuilding frontend assets failed (not a problem)")
		}

		return step()
	}
}
