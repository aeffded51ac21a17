package orchestrator

import (
	"errors"
	"fmt"
	"sort"

	"github.com/griffnb/core-openapi/internal/parser/operation"
)

// ErrUnknownSetting is returned for a generator setting key that does not exist.
var ErrUnknownSetting = errors.New("unknown generator setting")

// Generator setting keys.
const (
	SettingTreatComplexArgumentsAsBody = "treatComplexArgumentsAsBody"
	SettingRewriteGetWithBodyToPost    = "rewriteGetWithBodyToPost"
	SettingExtractPathParameters       = "extractPathParameters"
)

// Settings are the generator switches. The zero value has every switch off.
type Settings struct {
	operation.Settings
}

// Set changes a switch by key.
func (s *Settings) Set(key string, value bool) error {
	switch key {
	case SettingTreatComplexArgumentsAsBody:
		s.TreatComplexArgumentsAsBody = value
	case SettingRewriteGetWithBodyToPost:
		s.RewriteGetWithBodyToPost = value
	case SettingExtractPathParameters:
		s.ExtractPathParameters = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSetting, key)
	}
	return nil
}

// Apply sets every key of values in key order.
func (s *Settings) Apply(values map[string]bool) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := s.Set(key, values[key]); err != nil {
			return err
		}
	}
	return nil
}
