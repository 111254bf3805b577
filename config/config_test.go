package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/devana-go/dva"
)

func sampleDocument() *Document {
	bounds := make(BoundsConfig, dva.NumDVAParams)
	for i := range bounds {
		bounds[i] = [2]float64{-5, 5}
	}
	return &Document{
		MainParams: dva.MainParams{
			Mu: 1, Lambda: [5]float64{1, 1, 1, 1, 1}, Nu: [5]float64{1, 1, 1, 1, 1},
			ALow: 0.05, AUp: 0.05, F1: 100, F2: 100, OmegaDC: 5000, ZetaDC: 0.01,
		},
		Bounds:    bounds,
		Frequency: FrequencyConfig{Start: 10, End: 10000, Points: 1000},
		Engine:    EngineConfig{"pop_size": 40, "max_generations": 150},
	}
}

func TestSaveLoadRoundTrips(t *testing.T) {
	doc := sampleDocument()
	path := filepath.Join(t.TempDir(), "campaign.json")
	if err := Save(doc, path); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.MainParams.OmegaDC != doc.MainParams.OmegaDC {
		t.Errorf("OmegaDC = %v, want %v", loaded.MainParams.OmegaDC, doc.MainParams.OmegaDC)
	}
	if len(loaded.Bounds) != dva.NumDVAParams {
		t.Errorf("bounds length = %d, want %d", len(loaded.Bounds), dva.NumDVAParams)
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestValidateRejectsWrongBoundsCount(t *testing.T) {
	doc := sampleDocument()
	doc.Bounds = doc.Bounds[:10]
	if err := Validate(doc); err == nil {
		t.Fatal("expected error for wrong bounds count")
	}
}

func TestValidateRejectsInvertedBounds(t *testing.T) {
	doc := sampleDocument()
	doc.Bounds[0] = [2]float64{5, -5}
	if err := Validate(doc); err == nil {
		t.Fatal("expected error for low > high")
	}
}

func TestBoundsConfigMarksDegenerateIntervalsFixed(t *testing.T) {
	doc := sampleDocument()
	doc.Bounds[3] = [2]float64{2, 2}
	_, fixed, err := doc.Bounds.ToBounds()
	if err != nil {
		t.Fatalf("ToBounds returned error: %v", err)
	}
	if !fixed[3] {
		t.Error("expected coordinate 3 to be marked fixed")
	}
}

func TestEngineDefaultsScaleByPreset(t *testing.T) {
	quickPop, quickGen := EngineDefaults(PresetQuick)
	thoroughPop, thoroughGen := EngineDefaults(PresetThorough)
	if thoroughPop <= quickPop || thoroughGen <= quickGen {
		t.Error("expected thorough preset to exceed quick preset in both dimensions")
	}
}
