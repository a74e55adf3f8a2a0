package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/benjaminschreck/go-deckfill/pkg/deckfill"
	"github.com/benjaminschreck/go-deckfill/pkg/deckfill/deck"
	"github.com/benjaminschreck/go-deckfill/pkg/deckfill/pptx"
	"github.com/benjaminschreck/go-deckfill/pkg/deckfill/pptx/pptxtest"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--log-level", "off"))
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFixtures(t *testing.T) (dir, template, ctxFile string) {
	t.Helper()
	dir = t.TempDir()
	template = filepath.Join(dir, "template.pptx")
	ctxFile = filepath.Join(dir, "context.yaml")
	require.NoError(t, os.WriteFile(template, pptxtest.New().Slide(
		pptxtest.TextBox(2, "Title", pptxtest.TextPara("Hello $name$")),
		pptxtest.Table(3, "People",
			pptxtest.TextRow("Name"),
			pptxtest.TextRow("$relationship_people.name$"),
		),
	).Bytes(), 0o644))
	require.NoError(t, os.WriteFile(ctxFile, []byte("name: World\nrelationship_people:\n  - name: Ada\n  - name: Grace\n"), 0o644))
	return dir, template, ctxFile
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "deckfill version "+Version+"\n", out)
}

func TestFillCommand(t *testing.T) {
	dir, template, ctxFile := writeFixtures(t)
	output := filepath.Join(dir, "out.pptx")

	out, err := execute(t, "fill", template, ctxFile, "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+output)
	assert.Contains(t, out, "slides:           1")
	assert.Contains(t, out, "tables expanded:  1 (2 rows)")

	pres, err := pptx.OpenFile(output)
	require.NoError(t, err)
	shapes := pres.Slides()[0].Shapes()
	assert.Equal(t, "Hello World", shapes[0].(deck.TextShape).TextFrame().Text())
	assert.Len(t, shapes[1].(deck.TableShape).Table().Rows(), 3)
}

func TestFillCommandErrors(t *testing.T) {
	dir, template, _ := writeFixtures(t)

	_, err := execute(t, "fill", template)
	assert.Error(t, err, "two arguments are required")

	missing := filepath.Join(dir, "missing.json")
	_, err = execute(t, "fill", template, missing, "--output", filepath.Join(dir, "out.pptx"))
	assert.Error(t, err)

	t.Cleanup(func() { _ = fillCmd.Flags().Set("delimiter", deckfill.DefaultDelimiter) })
	_, err = execute(t, "fill", template, missing, "--output", filepath.Join(dir, "out.pptx"), "--delimiter", "##")
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestInspectCommand(t *testing.T) {
	_, template, _ := writeFixtures(t)
	dir := t.TempDir()
	partial := filepath.Join(dir, "partial.json")
	require.NoError(t, os.WriteFile(partial, []byte(`{"name": "x"}`), 0o644))

	out, err := execute(t, "inspect", template, "--context", partial, "--json")
	require.NoError(t, err)

	var inv deckfill.Inventory
	require.NoError(t, json.Unmarshal([]byte(out), &inv))
	assert.Equal(t, []string{"relationship_people"}, inv.MissingKeys)
	require.Len(t, inv.Tokens, 1)
	assert.Equal(t, "name", inv.Tokens[0].Key)
}

func TestPrintInventory(t *testing.T) {
	inv := &deckfill.Inventory{
		Tokens:        []deckfill.TokenRef{{Key: "name", Slide: 1, Shape: "Title", Location: deckfill.LocationText}},
		Relationships: []deckfill.RelationshipRef{{Name: "relationship_people", Fields: []string{"id", "name"}, Slide: 2, Shape: "People"}},
		Pictures:      []deckfill.PictureRef{{ID: "logo", Slide: 3, Shape: "Logo", Geometry: deck.Geometry{Left: 1, Top: 2, Width: 3, Height: 4}}},
		MissingKeys:   []string{"logo"},
	}
	codec := deckfill.MustCodec("#")

	var buf bytes.Buffer
	printInventory(&buf, codec, inv, true)
	out := buf.String()
	assert.Contains(t, out, "Tokens (1):")
	assert.Contains(t, out, "#name#")
	assert.Contains(t, out, "relationship_people [id, name]")
	assert.Contains(t, out, "logo at (1,2) 3x4")
	assert.Contains(t, out, "Missing keys (1):\n  logo\n")

	buf.Reset()
	inv.MissingKeys = nil
	printInventory(&buf, codec, inv, true)
	assert.Contains(t, buf.String(), "All keys are bound.")

	buf.Reset()
	printInventory(&buf, codec, inv, false)
	assert.NotContains(t, buf.String(), "All keys are bound.")
}

func TestWatchRefillsOnChange(t *testing.T) {
	prev := logger
	logger = zaptest.NewLogger(t)
	t.Cleanup(func() { logger = prev })
	dir := t.TempDir()
	file := filepath.Join(dir, "context.json")
	require.NoError(t, os.WriteFile(file, []byte(`{}`), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	called := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- watch(ctx, []string{file}, func(context.Context) error {
			select {
			case called <- struct{}{}:
			default:
			}
			return nil
		})
	}()

	// Keep touching the file until the watcher is up. The interval is longer
	// than the debounce delay so that each write can fire on its own.
	deadline := time.After(10 * time.Second)
	tick := time.NewTicker(time.Second)
	defer tick.Stop()
loop:
	for {
		select {
		case <-called:
			break loop
		case <-tick.C:
			require.NoError(t, os.WriteFile(file, []byte(`{"name": "x"}`), 0o644))
		case <-deadline:
			t.Fatal("watch did not call the fill function")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
