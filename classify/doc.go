// Package classify decides which content profile fits a document: verse
// ("verso"), prose ("prosa") or structured data ("json").
//
// The decision is made from the shape of the text alone. Lines are first
// re-joined across soft wraps, then a handful of structural metrics are
// computed (share of short lines, share of very short blocks, blank line
// density, runs of short lines). A weighted score decides verse; when the
// score falls short, a set of strong indicators can still tip the balance.
// Prose is the conservative default.
//
// Basic usage:
//
//	c := classify.New()
//	cand := c.Classify("poemas.txt", text)
//	fmt.Println(cand.Profile, cand.Confidence, cand.Reasons)
//
// Every threshold lives in [Config]; [Classifier.Report] returns the
// decision together with the thresholds that produced it.
//
// Classification is a pure function of the input and the configuration.
package classify
