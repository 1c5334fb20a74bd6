package session

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/iburimskiy/fractal-tree/internal/tree"
)

// settingsFile is the on-disk settings layout. Values are in slider units,
// so fractions appear as whole percents. Randomness is a legacy field that
// round-trips without affecting generation.
type settingsFile struct {
	Depth            float64 `json:"depth"`
	AngleVariation   float64 `json:"angle_variation"`
	LengthFactor     float64 `json:"length_factor"`
	InitialLength    float64 `json:"initial_length"`
	Randomness       float64 `json:"randomness"`
	BranchThickness  float64 `json:"branch_thickness"`
	BranchColor      float64 `json:"branch_color"`
	AngleRandomness  float64 `json:"angle_randomness"`
	LengthRandomness float64 `json:"length_randomness"`
}

func (sf *settingsFile) slot(name tree.Name) *float64 {
	switch name {
	case tree.NameDepth:
		return &sf.Depth
	case tree.NameAngleSpread:
		return &sf.AngleVariation
	case tree.NameLengthFactor:
		return &sf.LengthFactor
	case tree.NameBaseLength:
		return &sf.InitialLength
	case tree.NameRandomness:
		return &sf.Randomness
	case tree.NameThickness:
		return &sf.BranchThickness
	case tree.NameColor:
		return &sf.BranchColor
	case tree.NameAngleJitter:
		return &sf.AngleRandomness
	case tree.NameLengthJitter:
		return &sf.LengthRandomness
	}
	return nil
}

// Serialize encodes the live parameters as a settings document. Lock flags
// are session state and are not included.
func (s *Session) Serialize() ([]byte, error) {
	var sf settingsFile
	for _, f := range tree.Fields {
		*sf.slot(f.Name) = float64(f.Slider(s.params))
	}
	return json.Marshal(sf)
}

// Deserialize replaces the live parameters with the ones in data. Every key
// must be present and in range; otherwise nothing is applied.
func (s *Session) Deserialize(data []byte) error {
	p, err := decodeSettings(data, s.params)
	if err != nil {
		s.logger.Warn("settings rejected", "err", err)
		return err
	}
	s.params = p
	s.changed()
	return nil
}

func decodeSettings(data []byte, base tree.Parameters) (tree.Parameters, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return base, &tree.ValidationError{Reason: fmt.Sprintf("malformed settings: %v", err)}
	}
	for _, f := range tree.Fields {
		raw, ok := keys[string(f.Name)]
		if !ok {
			return base, &tree.ValidationError{Field: f.Name, Reason: "missing from settings"}
		}
		var v *float64
		if err := json.Unmarshal(raw, &v); err != nil || v == nil {
			return base, &tree.ValidationError{Field: f.Name, Reason: "not a number"}
		}
	}

	var sf settingsFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return base, &tree.ValidationError{Reason: fmt.Sprintf("malformed settings: %v", err)}
	}

	p := base
	for _, f := range tree.Fields {
		v := *sf.slot(f.Name) / f.Scale
		if err := f.Check(v); err != nil {
			return base, err
		}
		f.Set(&p, f.Snap(v))
	}
	return p, nil
}

// SaveSettings writes the settings document to path.
func (s *Session) SaveSettings(path string) (err error) {
	data, err := s.Serialize()
	if err != nil {
		return &IOError{Op: "save", Path: path, Err: err}
	}

	f, err := os.Create(path)
	if err != nil {
		return &IOError{Op: "save", Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &IOError{Op: "save", Path: path, Err: cerr}
		}
	}()

	if _, err := f.Write(data); err != nil {
		return &IOError{Op: "save", Path: path, Err: err}
	}
	s.logger.Info("settings saved", "path", path)
	return nil
}

// LoadSettings reads and applies the settings document at path. Read
// failures are *IOError, content problems *tree.ValidationError; either way
// the live parameters are untouched.
func (s *Session) LoadSettings(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &IOError{Op: "load", Path: path, Err: err}
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return &IOError{Op: "load", Path: path, Err: err}
	}
	if err := s.Deserialize(data); err != nil {
		return err
	}
	s.logger.Info("settings loaded", "path", path)
	return nil
}
