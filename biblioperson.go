// Package biblioperson turns books, poetry collections and articles into
// ordered, classified segments for dataset construction.
//
// Basic usage:
//
//	segments, warnings, err := biblioperson.Open("poemas.pdf").Segments()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", biblioperson.FormatWarnings(warnings))
//	}
//
// With options:
//
//	res, err := biblioperson.Open("novela.pdf").
//	    Profile("prosa").
//	    Language("es").
//	    Output("out/novela.ndjson").
//	    Process()
//
// The profile defaults to "auto", which classifies the document as verse,
// prose or structured data before segmenting it. For batches and custom
// collaborators use the pipeline package directly.
package biblioperson

// Open returns a Document for fluent configuration. Nothing is read until a
// terminal operation such as Segments is called.
//
// Example:
//
//	segments, _, err := biblioperson.Open("poemas.txt").Profile("verso").Segments()
func Open(path string) *Document {
	return &Document{
		path:    path,
		options: defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	report := biblioperson.Must(biblioperson.Open("poemas.txt").Detect())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustSegments is a helper that wraps a call to Segments and panics if the
// error is non-nil. It discards warnings.
//
// Example:
//
//	segments := biblioperson.MustSegments(biblioperson.Open("poemas.txt").Segments())
func MustSegments[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
