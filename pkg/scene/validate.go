package scene

import (
	"fmt"
	"math"

	"github.com/chazu/impi/pkg/impi"
)

// Severity indicates whether a finding blocks lowering the scene to
// parameters or is merely advisory.
type Severity int

const (
	SeverityError   Severity = iota // blocks lowering
	SeverityWarning                 // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Field    string
	Message  string
	Severity Severity
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Field, e.Message)
}

// Validate checks a scene for problems before it is lowered to commit
// parameters. It never mutates the scene. Warnings do not block lowering;
// callers decide whether any SeverityError findings are fatal.
func Validate(s *Scene) []ValidationError {
	var errs []ValidationError

	if s.IsoSet && (math.IsNaN(s.IsoValue) || math.IsInf(s.IsoValue, 0)) {
		errs = append(errs, ValidationError{
			Field:    "isoValue",
			Message:  "must be finite",
			Severity: SeverityError,
		})
	}

	switch s.Source {
	case impi.SourceOctant:
		if len(s.Octants) == 0 {
			errs = append(errs, ValidationError{
				Field:    "octants",
				Message:  "octant source with no octants yields no geometry",
				Severity: SeverityWarning,
			})
		}
		for i, o := range s.Octants {
			if o.Width <= 0 || math.IsNaN(o.Width) {
				errs = append(errs, ValidationError{
					Field:    fmt.Sprintf("octants[%d].width", i),
					Message:  fmt.Sprintf("width %v must be positive", o.Width),
					Severity: SeverityError,
				})
			}
			for _, v := range o.Values {
				if math.IsNaN(v) {
					errs = append(errs, ValidationError{
						Field:    fmt.Sprintf("octants[%d].values", i),
						Message:  "NaN corner value, cell will never be active",
						Severity: SeverityWarning,
					})
					break
				}
			}
		}

	case impi.SourceUniform, impi.SourceSegmented:
		if s.Volume == nil {
			errs = append(errs, ValidationError{
				Field:    "volume",
				Message:  fmt.Sprintf("%s source needs a volume", s.Source),
				Severity: SeverityError,
			})
			break
		}
		d := s.Volume.Dims
		if d.X < 2 || d.Y < 2 || d.Z < 2 {
			errs = append(errs, ValidationError{
				Field:    "volume.dims",
				Message:  fmt.Sprintf("%dx%dx%d has no cells", d.X, d.Y, d.Z),
				Severity: SeverityError,
			})
		}
		if s.Volume.Kind == VolumeRaw && s.Volume.Path == "" {
			errs = append(errs, ValidationError{
				Field:    "volume.path",
				Message:  "raw volume needs a file path",
				Severity: SeverityError,
			})
		}
		if s.Source == impi.SourceSegmented && s.NumSegments <= 0 {
			errs = append(errs, ValidationError{
				Field:    "numSegments",
				Message:  "segmented source needs a positive segment count",
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// HasErrors reports whether any finding is of SeverityError.
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}
