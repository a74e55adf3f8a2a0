// Package deckfill populates slide decks from a data context.
//
// A deck is a template: its text, table cells and picture descriptions carry
// "magic words", context keys wrapped in a delimiter. Filling a deck replaces
// every magic word with the value bound to its key while keeping the
// formatting of the surrounding text.
//
// # Quick Start
//
//	engine, err := deckfill.New(deckfill.Options{Logger: logger})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	data := deckfill.Context{
//	    "name":  "Ann",
//	    "logo":  "assets/logo.png",
//	    "relationship_people": []deckfill.Record{
//	        {"id": "1", "first_name": "Ann"},
//	        {"id": "2", "first_name": "Bob"},
//	    },
//	}
//
//	report, err := engine.FillFile(ctx, "template.pptx", "out.pptx", data)
//
// # Placeholders
//
// Text:
//
//	$name$                      - replaced by the value of "name"
//
// Tables:
//
//	$relationship_people.id$    - in the second row of a table, repeats the
//	                              row once per record of "relationship_people"
//
// Pictures:
//
//	a picture whose alt text is "logo" is replaced by the image bound to
//	"logo" (a file path, data URI, []byte, io.Reader or deck.Image), keeping
//	its position and size.
//
// # Errors
//
// Placeholders that cannot be resolved are reported as *FillError values.
// By default they are collected in Report.Warnings and the fill goes on; with
// Options.StrictMode the first one stops the fill. Pictures without alt text
// are never fatal.
package deckfill
