package persona

import (
	"strings"
	"testing"
)

func TestByID(t *testing.T) {
	t.Parallel()

	if got := ByID("nyx"); got.Name != "Nyx" {
		t.Fatalf("ByID(nyx)=%+v", got)
	}
	if got := ByID("no-such-persona"); got.ID != Personas[0].ID {
		t.Fatalf("ByID(unknown)=%+v, want default %q", got, Personas[0].ID)
	}
	if got := ByID(""); got.ID != Personas[0].ID {
		t.Fatalf("ByID(empty)=%+v, want default %q", got, Personas[0].ID)
	}
}

func TestPickTwoDistinct(t *testing.T) {
	t.Parallel()

	for i := 0; i < 100; i++ {
		a, b := PickTwo()
		if a.ID == b.ID {
			t.Fatalf("PickTwo returned the same persona twice: %q", a.ID)
		}
	}
}

func TestStylePromptMentionsBothVoices(t *testing.T) {
	t.Parallel()

	a, b := ByID("vanta"), ByID("iris")
	prompt := StylePrompt(a, b)
	if !strings.Contains(prompt, a.Name) || !strings.Contains(prompt, a.Voice) {
		t.Fatalf("prompt missing %s: %q", a.Name, prompt)
	}
	if !strings.Contains(prompt, b.Name) || !strings.Contains(prompt, b.Voice) {
		t.Fatalf("prompt missing %s: %q", b.Name, prompt)
	}
}

func TestStylePromptForIDsFallsBack(t *testing.T) {
	t.Parallel()

	got := StylePromptForIDs("bogus", "nyx")
	if !strings.Contains(got, Personas[0].Name) {
		t.Fatalf("expected fallback persona in prompt: %q", got)
	}
	if !strings.Contains(got, "Nyx") {
		t.Fatalf("expected Nyx in prompt: %q", got)
	}
}

func TestSeedPromptNamesPersonas(t *testing.T) {
	t.Parallel()

	a, b := ByID("kairo"), ByID("hollow")
	got := SeedPrompt(a, b)
	if !strings.HasPrefix(got, "Seed: ") {
		t.Fatalf("SeedPrompt=%q, want Seed prefix", got)
	}
	if !strings.Contains(got, a.Name) || !strings.Contains(got, b.Name) {
		t.Fatalf("SeedPrompt missing persona names: %q", got)
	}
}

func TestHousePrompt(t *testing.T) {
	t.Parallel()

	got := HousePrompt()
	if !strings.Contains(got, "ZEN/CLI HYBRID MODE") {
		t.Fatalf("HousePrompt=%q", got)
	}
}

func TestAllCopies(t *testing.T) {
	t.Parallel()

	all := All()
	if len(all) != len(Personas) {
		t.Fatalf("All()=%d personas, want %d", len(all), len(Personas))
	}
	all[0].Name = "mutated"
	if Personas[0].Name == "mutated" {
		t.Fatal("All must return a copy, not the backing slice")
	}
}
