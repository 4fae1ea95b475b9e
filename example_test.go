package biblioperson_test

import (
	"fmt"
	"log"

	"github.com/Karasowl/biblioperson"
)

func Example() {
	segments, warnings, err := biblioperson.Open("poemas.pdf").Segments()
	if err != nil {
		log.Fatal(err)
	}
	for _, s := range segments {
		fmt.Printf("%d %s: %s\n", s.Order, s.Type, s.Text)
	}
	if len(warnings) > 0 {
		log.Println("Warnings:", biblioperson.FormatWarnings(warnings))
	}
}

func Example_profileAndExport() {
	res, err := biblioperson.Open("novela.pdf").
		Profile("prosa").
		Language("es").
		Output("out/novela.ndjson").
		Process()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Stats["segments"], "segments written to", res.Stats["output"])
}

func Example_detect() {
	report := biblioperson.Must(biblioperson.Open("poemas.txt").Detect())
	fmt.Println(report.DetectedProfile, report.Confidence)
	for _, r := range report.Reasons {
		fmt.Println(" -", r)
	}
}
