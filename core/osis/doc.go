// Package osis extracts chapters, verses, paragraph groups and search hits
// from OSIS XML Bible documents.
//
// Two encodings are supported. Contained documents wrap every chapter and
// verse in a single element:
//
//	<chapter osisID="Gen.1"><verse osisID="Gen.1.1">In the beginning</verse></chapter>
//
// Milestone documents mark boundaries with empty start and end elements that
// may sit anywhere in the tree, so a verse can span paragraphs:
//
//	<verse osisID="Gen.1.1" sID="Gen.1.1.sID"/>In the beginning<verse eID="Gen.1.1.eID"/>
//
// A Reader detects the encoding once and dispatches to the matching parser.
// Query methods never fail: unknown references, malformed markers and empty
// search terms produce empty results, and malformed data is counted in
// Anomalies. Verse text is returned as lightweight HTML with red-letter
// quotations, added words, titles and line breaks marked up.
package osis
