package main

import (
	"reflect"
	"testing"

	"github.com/twbloc/twbloc/config"
)

func TestResolveRun_FlagsWinOverConfig(t *testing.T) {
	cfg := config.Config{
		Input:    "cfg.twb",
		Language: "German",
		Provider: "openai",
		Model:    "cfg-model",
	}
	a := &translateArgs{
		input:    "flag.twb",
		language: "French",
		provider: "anthropic",
	}

	run, err := resolveRun(cfg, a, true)
	if err != nil {
		t.Fatalf("resolveRun: %v", err)
	}
	if run.input != "flag.twb" || run.language != "French" || run.provider != "anthropic" {
		t.Errorf("run = %+v", run)
	}
	if run.model != "cfg-model" {
		t.Errorf("model = %q, want config value to fill the gap", run.model)
	}
}

func TestResolveRun_ConfigLanguageWhenFlagUnset(t *testing.T) {
	cfg := config.Config{Input: "cfg.twb", Language: "German", Provider: "anthropic"}
	a := &translateArgs{language: "English"} // cobra default, flag not set

	run, err := resolveRun(cfg, a, false)
	if err != nil {
		t.Fatalf("resolveRun: %v", err)
	}
	if run.language != "German" {
		t.Errorf("language = %q, want config value when flag unset", run.language)
	}
	if run.output != "cfg_DE.twb" {
		t.Errorf("output = %q, want derived from config language", run.output)
	}
}

func TestResolveRun_NoInput(t *testing.T) {
	if _, err := resolveRun(config.Default(), &translateArgs{}, false); err == nil {
		t.Error("missing input accepted")
	}
}

func TestResolveRun_DerivedOutput(t *testing.T) {
	cfg := config.Default()
	a := &translateArgs{input: "Viljandimaa ÜTK.twb", language: "English"}

	run, err := resolveRun(cfg, a, true)
	if err != nil {
		t.Fatalf("resolveRun: %v", err)
	}
	if run.output != "Viljandimaa ÜTK_EN.twb" {
		t.Errorf("output = %q", run.output)
	}
}

func TestParsePreserve(t *testing.T) {
	got := parsePreserve(" Tartu , ÜTK ,", []string{"Viljandimaa"})
	want := []string{"Viljandimaa", "Tartu", "ÜTK"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parsePreserve = %v, want %v", got, want)
	}
	if out := parsePreserve("", nil); len(out) != 0 {
		t.Errorf("parsePreserve empty = %v", out)
	}
}

func TestMaskKey(t *testing.T) {
	if got := maskKey("sk-abcdef123456"); got != "********3456" {
		t.Errorf("maskKey = %q", got)
	}
	if got := maskKey("abc"); got != "****" {
		t.Errorf("maskKey short = %q", got)
	}
}
