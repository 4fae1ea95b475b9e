package layout

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/Karasowl/biblioperson/model"
	"github.com/tsawler/tabula/text"
)

const pageH = 800.0

func frag(s string, x, y, size float64, font string) text.TextFragment {
	return text.TextFragment{
		Text:     s,
		X:        x,
		Y:        y,
		Width:    float64(utf8.RuneCountInString(s)) * size * 0.5,
		Height:   size,
		FontName: font,
		FontSize: size,
	}
}

func body(s string, y float64) text.TextFragment {
	return frag(s, 72, y, 12, "Times-Roman")
}

type fakeSource struct {
	pages    []Page
	coarse   map[int]string
	fail     map[int]error
	panicOn  map[int]bool
	countErr error
}

func (f *fakeSource) PageCount() (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return len(f.pages), nil
}

func (f *fakeSource) PageFragments(i int) (Page, error) {
	if f.panicOn[i] {
		panic("broken content stream")
	}
	if err := f.fail[i]; err != nil {
		return Page{}, err
	}
	return f.pages[i], nil
}

func (f *fakeSource) CoarsePageText(i int) (string, error) {
	return f.coarse[i], nil
}

func page(i int, frags ...text.TextFragment) Page {
	return Page{Index: i, Width: 600, Height: pageH, Fragments: frags}
}

func TestIsParagraphBreak(t *testing.T) {
	tests := []struct {
		name string
		prev string
		curr string
		want bool
	}{
		{"no terminal punctuation", "El sol salía sobre la llanura cuando", "llegamos al pueblo.", false},
		{"terminal then uppercase", "Todos dormían aquella noche en la casa grande.", "Mañana partiremos hacia las montañas del norte.", true},
		{"terminal then digit", "La guerra terminó aquel invierno sin vencedores.", "1939 fue el año en que todo cambió para siempre.", true},
		{"lowercase start", "Dijo que vendría.", "pero nunca llegó a la estación aquella tarde.", false},
		{"continuation token", "La ciudad despertaba lentamente bajo la lluvia.", "Con el tiempo aprendimos a querer aquel silencio.", false},
		{"both short", "Se fue.", "Nadie lloró.", false},
		{"ends with comma", "Llegaron el lunes, el martes,", "El miércoles también llegaron los demás invitados.", false},
		{"ends with determiner", "Al fondo del pasillo estaba la", "Puerta que nadie se atrevía a abrir en invierno.", false},
		{"list marker", "Los ingredientes son los siguientes", "- harina de trigo", true},
		{"numbered list marker", "Los pasos a seguir son los siguientes", "2) mezclar todo", true},
		{"closing quote is terminal", "Entonces gritó: «¡Fuego en el puerto de la ciudad!»", "Corrieron hacia los muelles sin pensarlo dos veces.", true},
		{"ellipsis is terminal", "Y así pasaron los años, uno detrás de otro…", "Nadie recordaba ya el nombre del viejo pescador.", true},
		{"colon then list marker", "Necesitamos los siguientes ingredientes:", "- dos tazas de harina de trigo", true},
		{"comma then numbered list", "Tres pasos,", "1. Mezclar", true},
		{"terminal then dash dialogue", "Se quedó mirando la ventana durante mucho tiempo.", "—¿Vienes o no vienes? —preguntó su hermana menor.", true},
		{"short dialogue lines", "—¿Vienes?", "—No.", true},
		{"dash without terminal", "Y entonces dijo", "—nada— y se fue sin mirar atrás.", false},
		{"empty previous", "", "Texto", true},
		{"both empty", "", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsParagraphBreak(tc.prev, tc.curr); got != tc.want {
				t.Errorf("IsParagraphBreak(%q, %q) = %v, want %v", tc.prev, tc.curr, got, tc.want)
			}
		})
	}
}

func TestCorruptionFilter(t *testing.T) {
	f := newCorruptionFilter(DefaultConfig())

	tests := []struct {
		name    string
		in      string
		want    string
		outcome repairOutcome
	}{
		{"clean line", "Había una vez un pueblo llamado Macondo", "Había una vez un pueblo llamado Macondo", lineClean},
		{"short line ignored", "AAbb", "AAbb", lineClean},
		{"doubled glyphs repaired", "EEll ssooll ssaallííaa", "El sol salía", lineRepaired},
		{"legitimate double kept", "LLLLaammaa", "LLama", lineRepaired},
		{"doubled symbols dropped", "##..##..aa..##..##", "", lineClean},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, outcome := f.check(tc.in)
			if outcome != tc.outcome {
				t.Fatalf("outcome = %v, want %v", outcome, tc.outcome)
			}
			if tc.outcome != lineClean && got != tc.want {
				t.Errorf("text = %q, want %q", got, tc.want)
			}
		})
	}

	if !IsCorrupted("HHoollaa mmuunnddoo") {
		t.Error("expected doubled line to be corrupted")
	}
	if IsCorrupted("Hola mundo querido") {
		t.Error("expected clean line not to be corrupted")
	}
}

func TestCorruptionDropsUnrepairable(t *testing.T) {
	f := corruptionFilter{minRunes: 10, ratio: 0.3, minRepair: 0.6}
	_, outcome := f.check("HHoollaa mmuunnddoo")
	if outcome != lineDropped {
		t.Errorf("outcome = %v, want lineDropped", outcome)
	}
}

func TestFontFlags(t *testing.T) {
	tests := []struct {
		font string
		want int
	}{
		{"Times-Roman", model.FlagSerif},
		{"Times-BoldItalic", model.FlagSerif | model.FlagBold | model.FlagItalic},
		{"ABCDEF+Helvetica-Oblique", model.FlagItalic},
		{"Courier", model.FlagMonospace},
		{"DejaVuSans-Bold", model.FlagBold},
		{"Arial-Black", model.FlagBold},
		{"", 0},
	}
	for _, tc := range tests {
		if got := FontFlags(tc.font); got != tc.want {
			t.Errorf("FontFlags(%q) = %b, want %b", tc.font, got, tc.want)
		}
	}
}

func TestIsPageNumber(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"12", true},
		{"- 12 -", true},
		{"Página 3", true},
		{"pág. 45", true},
		{"3 / 120", true},
		{"xiv", true},
		{"civil", false},
		{"Página", false},
		{"12 hombres sin piedad", false},
		{"-", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := IsPageNumber(tc.in); got != tc.want {
			t.Errorf("IsPageNumber(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestPageNumberKinds(t *testing.T) {
	if IsNumericPageNumber("xiv") {
		t.Error("IsNumericPageNumber(xiv) = true")
	}
	if !IsNumericPageNumber("- 12 -") {
		t.Error("IsNumericPageNumber(- 12 -) = false")
	}
	if !IsRomanPageNumber("- XIV -") {
		t.Error("IsRomanPageNumber(- XIV -) = false")
	}
	if IsRomanPageNumber("12") || IsRomanPageNumber("civil") {
		t.Error("IsRomanPageNumber accepted a non-numeral")
	}
}

func TestMergeAcrossPages(t *testing.T) {
	blocks := []model.Block{
		{Text: "Caminamos toda la noche hasta\nllegar a la", Page: 1, Type: model.BlockText},
		{Text: "orilla del río, donde nos esperaba el barquero.", Page: 2, Type: model.BlockText},
		{Text: "Al amanecer cruzamos", Page: 2, Type: model.BlockText},
		{Text: "sin decir palabra.", Page: 4, Type: model.BlockText},
	}
	orig := make([]model.Block, len(blocks))
	for i, b := range blocks {
		orig[i] = b.Clone()
	}

	got := MergeAcrossPages(blocks)

	if len(got) != 3 {
		t.Fatalf("got %d blocks, want 3", len(got))
	}
	want := "Caminamos toda la noche hasta\nllegar a la orilla del río, donde nos esperaba el barquero."
	if got[0].Text != want {
		t.Errorf("merged text = %q, want %q", got[0].Text, want)
	}
	if !reflect.DeepEqual(got[0].MergedFromPages, []int{1, 2}) {
		t.Errorf("MergedFromPages = %v, want [1 2]", got[0].MergedFromPages)
	}
	if got[2].Page != 4 || got[2].MergedFromPages != nil {
		t.Errorf("non-adjacent pages must not merge: %+v", got[2])
	}
	if !reflect.DeepEqual(blocks, orig) {
		t.Error("input blocks were modified")
	}
	if model.TotalNonSpace(got) != model.TotalNonSpace(blocks) {
		t.Error("merge changed non-whitespace content")
	}
}

func TestMergeAcrossPagesSinglePass(t *testing.T) {
	blocks := []model.Block{
		{Text: "uno y", Page: 1, Type: model.BlockText},
		{Text: "dos y", Page: 2, Type: model.BlockText},
		{Text: "tres", Page: 3, Type: model.BlockText},
	}
	got := MergeAcrossPages(blocks)
	if len(got) != 2 {
		t.Fatalf("got %d blocks, want 2", len(got))
	}
	if got[0].Text != "uno y dos y" || got[1].Text != "tres" {
		t.Errorf("unexpected merge result: %q, %q", got[0].Text, got[1].Text)
	}
}

func TestMergeAcrossPagesKeepsTitles(t *testing.T) {
	blocks := []model.Block{
		{Text: "El libro de los", Page: 1, Type: model.BlockTitle},
		{Text: "abrazos perdidos en la arena", Page: 2, Type: model.BlockText},
	}
	if got := MergeAcrossPages(blocks); len(got) != 2 {
		t.Errorf("title merged across pages: %+v", got)
	}
}

func TestExtractParagraphs(t *testing.T) {
	src := &fakeSource{pages: []Page{page(0,
		body("El sol salía sobre la llanura cuando", 700),
		body("llegamos al pueblo. Nadie nos esperaba.", 686),
		body("Mañana partiremos hacia las montañas del norte.", 672),
	)}}

	blocks, meta, err := NewExtractor().Extract(src)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if meta.PageCount != 1 {
		t.Errorf("PageCount = %d, want 1", meta.PageCount)
	}
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2: %+v", len(blocks), blocks)
	}
	if blocks[0].Text != "El sol salía sobre la llanura cuando\nllegamos al pueblo. Nadie nos esperaba." {
		t.Errorf("block 0 = %q", blocks[0].Text)
	}
	if blocks[1].Text != "Mañana partiremos hacia las montañas del norte." {
		t.Errorf("block 1 = %q", blocks[1].Text)
	}
	for _, b := range blocks {
		if b.Page != 1 || b.Type != model.BlockText || !b.BBox.IsValid() {
			t.Errorf("unexpected block %+v", b)
		}
		if !b.Visual.IsBold && b.Visual.DominantFont != "Times-Roman" {
			t.Errorf("DominantFont = %q", b.Visual.DominantFont)
		}
	}
	if blocks[0].Visual.LineCount != 2 {
		t.Errorf("LineCount = %d, want 2", blocks[0].Visual.LineCount)
	}
	if gap, ok := blocks[0].BBox.VerticalGap(blocks[1].BBox); !ok || gap < 0 {
		t.Errorf("blocks out of order: gap=%v ok=%v", gap, ok)
	}

	var fragChars int
	for _, f := range src.pages[0].Fragments {
		fragChars += model.NonSpaceCount(f.Text)
	}
	if got := model.TotalNonSpace(blocks); got != fragChars {
		t.Errorf("non-whitespace count = %d, want %d", got, fragChars)
	}
}

func TestExtractTitle(t *testing.T) {
	src := &fakeSource{pages: []Page{page(0,
		frag("CAPÍTULO PRIMERO", 125, 750, 16, "Times-Bold"),
		body("El sol salía sobre la llanura cuando", 700),
		body("llegamos al pueblo. Nadie nos esperaba.", 686),
	)}}

	blocks, _, err := NewExtractor().Extract(src)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	title := blocks[0]
	if title.Type != model.BlockTitle {
		t.Errorf("Type = %s, want title", title.Type)
	}
	if !title.Visual.IsBold || title.Visual.FontFlags&model.FlagBold == 0 {
		t.Errorf("title not bold: %+v", title.Visual)
	}
	if title.Visual.Alignment != model.AlignCenter {
		t.Errorf("Alignment = %s, want center", title.Visual.Alignment)
	}
	if title.HeadingLevel == 0 {
		t.Error("HeadingLevel not set")
	}
	if blocks[1].Type != model.BlockText {
		t.Errorf("body Type = %s", blocks[1].Type)
	}
}

func TestExtractRemovesRunningHeaders(t *testing.T) {
	var pages []Page
	for i := 0; i < 3; i++ {
		pages = append(pages, page(i,
			frag("Historia de la ciudad", 250, 780, 10, "Times-Italic"),
			body(fmt.Sprintf("Texto de la página %d con contenido suficiente.", i+1), 700),
			frag(fmt.Sprint(i+1), 295, 20, 10, "Times-Roman"),
		))
	}

	blocks, meta, err := NewExtractor().Extract(&fakeSource{pages: pages})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(blocks) != 3 {
		t.Fatalf("got %d blocks, want 3: %+v", len(blocks), blocks)
	}
	for _, b := range blocks {
		if strings.Contains(b.Text, "Historia de la ciudad") || IsPageNumber(b.Text) {
			t.Errorf("running text survived: %q", b.Text)
		}
	}
	if v, _ := meta.Get("header_footer_lines_removed"); v != 6 {
		t.Errorf("header_footer_lines_removed = %v, want 6", v)
	}
}

func TestExtractRepairsCorruption(t *testing.T) {
	src := &fakeSource{pages: []Page{page(0,
		body("EEll ssooll ssaallííaa", 700),
		body("sobre la llanura dormida.", 686),
	)}}

	blocks, meta, err := NewExtractor().Extract(src)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(blocks) != 1 || blocks[0].Text != "El sol salía\nsobre la llanura dormida." {
		t.Fatalf("unexpected blocks: %+v", blocks)
	}
	if len(meta.Warnings) != 1 || !strings.HasPrefix(meta.Warnings[0], model.WarnCorruption) {
		t.Errorf("warnings = %v", meta.Warnings)
	}
}

func TestExtractPageFallback(t *testing.T) {
	tests := []struct {
		name string
		src  *fakeSource
	}{
		{"page error", &fakeSource{fail: map[int]error{1: errors.New("bad xref")}}},
		{"page panic", &fakeSource{panicOn: map[int]bool{1: true}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.src.pages = []Page{
				page(0, body("Fin del capítulo uno.", 700)),
				page(1),
			}
			tc.src.coarse = map[int]string{1: "Primer párrafo de prueba.\n\nSegundo párrafo.\n \n12\n"}

			cfg := DefaultConfig()
			cfg.MergeAcrossPages = false
			blocks, meta, err := NewExtractorWithConfig(cfg).Extract(tc.src)
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if len(blocks) != 3 {
				t.Fatalf("got %d blocks, want 3: %+v", len(blocks), blocks)
			}
			if blocks[0].Source != "layout" || blocks[0].Page != 1 {
				t.Errorf("page 1 block = %+v", blocks[0])
			}
			for _, b := range blocks[1:] {
				if b.Source != "coarse" || b.Page != 2 || !b.BBox.IsZero() {
					t.Errorf("fallback block = %+v", b)
				}
			}
			if len(meta.Warnings) != 1 || !strings.HasPrefix(meta.Warnings[0], model.WarnPageExtraction+": page 2") {
				t.Errorf("warnings = %v", meta.Warnings)
			}
		})
	}
}

func TestExtractPageFallbackKeepsRomanTitles(t *testing.T) {
	src := &fakeSource{
		pages:  []Page{page(0)},
		fail:   map[int]error{0: errors.New("bad xref")},
		coarse: map[int]string{0: "II\n\nEl mar de la tarde\nse duerme en la arena\n\n7\n"},
	}
	blocks, _, err := NewExtractor().Extract(src)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	var texts []string
	for _, b := range blocks {
		texts = append(texts, b.Text)
	}
	if len(texts) != 2 || texts[0] != "II" {
		t.Errorf("blocks = %q, want the roman title kept and the page number dropped", texts)
	}
}

func TestExtractUnreadableSource(t *testing.T) {
	cause := errors.New("not a PDF")
	_, _, err := NewExtractor().Extract(&fakeSource{countErr: cause})

	var exErr *ExtractionError
	if !errors.As(err, &exErr) {
		t.Fatalf("expected *ExtractionError, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Error("ExtractionError does not wrap its cause")
	}
}

func TestExtractEmptyDocument(t *testing.T) {
	blocks, meta, err := NewExtractor().Extract(&fakeSource{pages: []Page{page(0)}})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(blocks) != 0 || len(meta.Warnings) != 0 {
		t.Errorf("blocks=%v warnings=%v", blocks, meta.Warnings)
	}
}

func TestLineGrouping(t *testing.T) {
	g := lineGrouper{tolerance: 0.5}
	lines := g.group([]text.TextFragment{
		frag("mundo", 110, 700, 12, "Times-Roman"),
		frag("Hola", 72, 700, 12, "Times-Roman"),
		frag("Segunda", 72, 686, 12, "Times-Roman"),
		frag("   ", 72, 672, 12, "Times-Roman"),
	}, pageH)

	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].Text != "Hola mundo" {
		t.Errorf("line 0 = %q, want %q", lines[0].Text, "Hola mundo")
	}
	if lines[0].BBox.Y0 >= lines[1].BBox.Y0 {
		t.Errorf("lines not top to bottom: %v %v", lines[0].BBox, lines[1].BBox)
	}
}

func TestLineGroupingJitteredBaselines(t *testing.T) {
	g := lineGrouper{tolerance: 0.5}
	lines := g.group([]text.TextFragment{
		frag("de", 120, 699.97, 12, "Times-Roman"),
		frag("Camino", 72, 686, 12, "Times-Roman"),
		frag("Fin", 72, 672, 12, "Times-Roman"),
		frag("mar", 90, 700.04, 12, "Times-Roman"),
		frag("sin", 120, 686.03, 12, "Times-Roman"),
		frag("El", 72, 700, 12, "Times-Roman"),
	}, pageH)

	var got []string
	for _, l := range lines {
		got = append(got, l.Text)
	}
	want := []string{"El mar de", "Camino sin", "Fin"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("lines = %q, want %q", got, want)
	}
}

func TestSentenceHelpers(t *testing.T) {
	ends := []struct {
		s    string
		want bool
	}{
		{"Fin.", true},
		{"¿Vienes?", true},
		{"dijo «basta.»", true},
		{"el atractivo", false},
		{"", false},
		{"una lista:", false},
	}
	for _, tt := range ends {
		if got := EndsSentence(tt.s); got != tt.want {
			t.Errorf("EndsSentence(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}

	cont := []struct {
		s    string
		want bool
	}{
		{"de esta idea", true},
		{"que no volvió", true},
		{"De esta idea", false},
		{"caminaba solo", false},
		{"", false},
	}
	for _, tt := range cont {
		if got := StartsWithContinuation(tt.s); got != tt.want {
			t.Errorf("StartsWithContinuation(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
}
