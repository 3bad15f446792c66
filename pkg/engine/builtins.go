package engine

import (
	"fmt"
	"strings"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/deadsy/sdfx/vec/v3i"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/impi/pkg/impi"
	"github.com/chazu/impi/pkg/scene"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms scene script source before handing it to
// zygomys:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal), so
//     keyword symbols need not be registered as globals.
//
//  2. Kebab-case to underscore: iso-value -> iso_value. zygomys does not
//     allow hyphens in identifiers (it reads them as subtraction).
//
//  3. ; line comments become // comments, which is what zygomys parses.
//
// All transformations respect string literal boundaries.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Copy double-quoted string literals untouched.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to //.
		if b[i] == ';' {
			result = append(result, '/', '/')
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]) {
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			result = append(result, '"')
			result = append(result, []byte(kwPrefix)...)
			result = append(result, b[i+1:j]...)
			result = append(result, '"')
			i = j
			continue
		}
		// Kebab-case identifiers: hyphen between identifier characters.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isLetter(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string, returning the
// bare keyword name if so.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		if name, ok := isKW(args[i]); ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an int from a Sexp.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toFloatSlice extracts a flat float slice from a Lisp list or array.
func toFloatSlice(s zygo.Sexp) ([]float64, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(items))
	for i, item := range items {
		f, err := toFloat64(item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}

func cubeDims(n int) v3i.Vec {
	return v3i.Vec{X: n, Y: n, Z: n}
}

// sexpVec3 wraps a v3.Vec so `vec3` results can flow between builtins.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.2f %.2f %.2f)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// toVec3 extracts a v3.Vec from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the scene DSL into a zygomys environment.
// Builtins mutate the provided scene as the script evaluates.
//
// Source code must be preprocessed with preprocessSource() first so that
// :keyword tokens arrive as recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, s *scene.Scene) {

	// -----------------------------------------------------------------------
	// (vec3 x y z)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3: want 3 components, got %d", len(args))
		}
		var v v3.Vec
		for i, dst := range []*float64{&v.X, &v.Y, &v.Z} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: component %d: %w", i, err)
			}
			*dst = f
		}
		return &sexpVec3{vec: v}, nil
	})

	// -----------------------------------------------------------------------
	// (iso-value 0.5)
	// -----------------------------------------------------------------------
	env.AddFunction("iso_value", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("iso-value: want 1 argument, got %d", len(args))
		}
		f, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("iso-value: %w", err)
		}
		s.IsoValue = f
		s.IsoSet = true
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (source :octant | :uniform | :segmented | :multires)
	// -----------------------------------------------------------------------
	env.AddFunction("source", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("source: want 1 argument, got %d", len(args))
		}
		kind, err := toKeywordString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("source: %w", err)
		}
		switch kind {
		case "octant":
			s.Source = impi.SourceOctant
		case "uniform":
			s.Source = impi.SourceUniform
		case "segmented":
			s.Source = impi.SourceSegmented
		case "multires":
			s.Source = impi.SourceMultiRes
		default:
			return zygo.SexpNull, fmt.Errorf("source: unknown kind %q", kind)
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (octant :center (vec3 0 0 0) :width 1.0 :values [0 0 0 0 1 1 1 1])
	// -----------------------------------------------------------------------
	env.AddFunction("octant", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		spec := scene.OctantSpec{Width: 1.0}

		if v, ok := pa.kw["center"]; ok {
			c, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("octant: center: %w", err)
			}
			spec.Center = c
		}
		if v, ok := pa.kw["width"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("octant: width: %w", err)
			}
			spec.Width = f
		}
		if v, ok := pa.kw["values"]; ok {
			vals, err := toFloatSlice(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("octant: values: %w", err)
			}
			if len(vals) != 8 {
				return zygo.SexpNull, fmt.Errorf("octant: values: want 8 corner values, got %d", len(vals))
			}
			copy(spec.Values[:], vals)
		}

		s.Octants = append(s.Octants, spec)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (blob-volume :dims 64)
	// -----------------------------------------------------------------------
	env.AddFunction("blob_volume", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		n := 64
		if v, ok := pa.kw["dims"]; ok {
			var err error
			if n, err = toInt(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("blob-volume: dims: %w", err)
			}
		}
		s.Volume = &scene.VolumeSpec{Kind: scene.VolumeBlob, Dims: cubeDims(n)}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (raw-volume :file "density.raw" :dims [64 64 64])
	// -----------------------------------------------------------------------
	env.AddFunction("raw_volume", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		spec := &scene.VolumeSpec{Kind: scene.VolumeRaw}

		if v, ok := pa.kw["file"]; ok {
			path, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("raw-volume: file: %w", err)
			}
			spec.Path = path
		}
		if v, ok := pa.kw["dims"]; ok {
			dims, err := toFloatSlice(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("raw-volume: dims: %w", err)
			}
			if len(dims) != 3 {
				return zygo.SexpNull, fmt.Errorf("raw-volume: dims: want 3 axes, got %d", len(dims))
			}
			spec.Dims.X = int(dims[0])
			spec.Dims.Y = int(dims[1])
			spec.Dims.Z = int(dims[2])
		}

		s.Volume = spec
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (segment-count 4)
	// -----------------------------------------------------------------------
	env.AddFunction("segment_count", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("segment-count: want 1 argument, got %d", len(args))
		}
		n, err := toInt(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("segment-count: %w", err)
		}
		s.NumSegments = n
		return zygo.SexpNull, nil
	})
}
