// Package pptx reads and writes PowerPoint (PPTX) packages as deck trees.
//
// A PPTX file is a ZIP archive of XML parts. Open loads the content types,
// the presentation part and every slide in presentation order; slide XML is
// kept as a node tree that preserves the prefixes and elements it was read
// with, so parts the engine never touches are written back unchanged.
//
// Shapes map to the deck interfaces as follows:
//
//   - p:sp with a p:txBody: deck.TextShape
//   - p:graphicFrame holding an a:tbl: deck.TableShape
//   - p:pic: deck.PictureShape (alt text is the cNvPr descr attribute)
//   - p:grpSp: deck.GroupShape
//
// Everything else is reported as deck.KindOther.
//
//	pres, err := pptx.OpenFile("template.pptx")
//	if err != nil {
//	    return err
//	}
//	report, err := engine.Fill(ctx, pres, data)
//	...
//	err = pres.SaveFile("out.pptx")
package pptx
