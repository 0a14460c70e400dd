package config

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v2"
)

func TestBuiltinConfig(t *testing.T) {
	rawConfig := make(map[string]interface{})
	assert.Nil(t, yaml.Unmarshal(defaultConfigData, &rawConfig))

	knownFields := make(map[string]bool)
	rt := reflect.TypeOf(Configuration{})
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		assert.NotEmpty(t, jsonTag)
		jsonField := strings.Split(jsonTag, ",")[0]
		knownFields[jsonField] = true

		if _, ok := rawConfig[jsonField]; !ok {
			assert.False(t, true, "default config missing field: %q", jsonField)
		}
	}

	for k := range rawConfig {
		_, ok := knownFields[k]
		assert.True(t, ok, "default config contains invalid field: %q", k)
	}
}

func TestDefaultConfig(t *testing.T) {
	// Will panic() on load failure because it should never happen at runtime.
	cfg := defaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestConfiguration_Validate(t *testing.T) {
	cases := map[string]struct {
		modify  func(*Configuration)
		wantErr string
	}{
		"default": {
			modify: func(*Configuration) {},
		},
		"small-arena": {
			modify:  func(c *Configuration) { c.ArenaCapacity = 16 },
			wantErr: "arena_capacity",
		},
		"huge-arena": {
			modify:  func(c *Configuration) { c.ArenaCapacity = 1<<30 + 1 },
			wantErr: "arena_capacity",
		},
		"negative-history": {
			modify:  func(c *Configuration) { c.HistorySize = -1 },
			wantErr: "history_size",
		},
		"bad-color": {
			modify:  func(c *Configuration) { c.Color = "sometimes" },
			wantErr: "color",
		},
		"no-path": {
			modify:  func(c *Configuration) { c.Path = "" },
			wantErr: "path",
		},
		"empty-alias": {
			modify:  func(c *Configuration) { c.Aliases = map[string]string{"x": ""} },
			wantErr: "aliases",
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			cfg := defaultConfig()
			tc.modify(cfg)

			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}
