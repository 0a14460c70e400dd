package vos

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ExampleCopyEnv() {
	env := NewMapEnv()
	CopyEnv(env, EnvironList{"A=B", "C=D", "E", "F=G=H"})

	fmt.Printf("Environ(): %q\n", env.Environ())
	fmt.Printf("Getenv(\"F\"): %q\n", env.Getenv("F"))

	// Output: Environ(): ["A=B" "C=D" "E=" "F=G=H"]
	// Getenv("F"): "G=H"
}

func ExampleNewMapEnvFrom() {
	env := NewMapEnvFrom(EnvironList{"C=D", "A=B", "E", "F=G=H"})

	fmt.Printf("Environ(): %q\n", env.Environ())
	fmt.Printf("Getenv(\"F\"): %q\n", env.Getenv("F"))

	// Output: Environ(): ["A=B" "C=D" "E=" "F=G=H"]
	// Getenv("F"): "G=H"
}

func ExampleMapEnv_Unsetenv() {
	env := NewMapEnv()
	env.Setenv("A", "B")
	env.Setenv("C", "D")

	fmt.Println("Before:", env.Environ())
	env.Unsetenv("A")
	fmt.Println("After:", env.Environ())

	// Output: Before: [A=B C=D]
	// After: [C=D]
}

func ExampleMapEnv_LookupEnv() {
	env := NewMapEnv()
	env.Setenv("A", "B")

	val, ok := env.LookupEnv("A")
	fmt.Println("Existing", "val:", val, "ok:", ok)
	val, ok = env.LookupEnv("B")
	fmt.Println("Missing", "val:", val, "ok:", ok)

	// Output: Existing val: B ok: true
	// Missing val:  ok: false
}

func TestMapEnv_Setenv(t *testing.T) {
	cases := map[string]struct {
		key     string
		wantErr bool
	}{
		"simple":     {"PATH", false},
		"underscore": {"_X1", false},
		"empty":      {"", true},
		"equals":     {"A=B", true},
		"space":      {"A B", true},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			env := NewMapEnv()
			err := env.Setenv(tc.key, "value")
			if tc.wantErr {
				assert.Error(t, err)
				assert.Empty(t, env.Environ())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "value", env.Getenv(tc.key))
			}
		})
	}
}

func TestMapEnv_UserHomeDir(t *testing.T) {
	env := NewMapEnv()
	_, err := env.UserHomeDir()
	assert.Error(t, err)

	env.Setenv("HOME", "/home/user")
	home, err := env.UserHomeDir()
	assert.NoError(t, err)
	assert.Equal(t, "/home/user", home)
}

func TestMapEnv_UnsetMissing(t *testing.T) {
	env := NewMapEnv()
	assert.NoError(t, env.Unsetenv("NOPE"))
}
