package commands

import (
	"testing"
)

func TestHelp(t *testing.T) {
	cases := goldenTestSuite{
		"list":    {[]string{"help"}},
		"topic":   {[]string{"help", "pwd"}},
		"aliases": {[]string{"help", "quit"}},
		"unknown": {[]string{"help", "nope"}},
	}

	cases.Run(t, Help(NewDefaultRegistry(NewSession())))
}

func TestVersion(t *testing.T) {
	cases := goldenTestSuite{
		"version": {[]string{"version"}},
	}

	cases.Run(t, Version)
}
