package segment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Karasowl/biblioperson/model"
)

func blk(text string) model.Block {
	return model.Block{Text: text, Page: 1, Type: model.BlockText}
}

func typed(typ model.BlockType, text string) model.Block {
	return model.Block{Text: text, Page: 1, Type: typ}
}

// at places a block on page 1 between y0 and y1.
func at(b model.Block, y0, y1 float64) model.Block {
	b.BBox = model.NewBBox(72, y0, 540, y1)
	return b
}

func texts(segs []model.Segment) []string {
	out := make([]string, len(segs))
	for i, s := range segs {
		out[i] = s.Text
	}
	return out
}

func types(segs []model.Segment) []model.SegmentType {
	out := make([]model.SegmentType, len(segs))
	for i, s := range segs {
		out[i] = s.Type
	}
	return out
}

func TestRegistry(t *testing.T) {
	reg := DefaultRegistry()
	assert.Equal(t, []string{"heading", "json", "markdown", "markdown_verse", "verse"}, reg.Names())
	assert.True(t, reg.Has(NameVerse))

	for _, name := range reg.Names() {
		s, err := reg.New(name, Options{})
		require.NoError(t, err, name)
		assert.Equal(t, name, s.Name())
	}

	_, err := reg.New("haiku", Options{})
	assert.ErrorIs(t, err, ErrUnknownSegmenter)

	err = reg.Register(NameMarkdown, func(Options) (Segmenter, error) { return NewJSONSegmenter(), nil })
	assert.Error(t, err)
	assert.Error(t, reg.Register("", nil))

	_, err = reg.New(NameMarkdown, Options{TitlePatterns: []string{"("}})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownSegmenter)
}

func TestOptionsThresholds(t *testing.T) {
	v, err := NewVerseSegmenterWithOptions(Options{Thresholds: map[string]float64{"max_verse_length": 20}})
	require.NoError(t, err)
	assert.Equal(t, 20, v.config.MaxVerseLength)
	assert.Equal(t, DefaultVerseConfig().MaxPoemChars, v.config.MaxPoemChars)

	m, err := NewMarkdownSegmenterWithOptions(Options{Thresholds: map[string]float64{"max_merge_gap": 3}})
	require.NoError(t, err)
	assert.Equal(t, 3.0, m.config.MaxMergeGap)
}

func TestMarkdown_LowercaseContinuationMerges(t *testing.T) {
	blocks := []model.Block{
		blk("Nadie en la ciudad supo ver el atractivo"),
		blk("de esta idea que cambió todo."),
	}
	segs := NewMarkdownSegmenter().Segment(blocks)
	require.Len(t, segs, 1)
	assert.Equal(t, model.SegmentParagraph, segs[0].Type)
	assert.Equal(t, "Nadie en la ciudad supo ver el atractivo de esta idea que cambió todo.", segs[0].Text)
	assert.Equal(t, 2, segs[0].Metadata["merged_blocks"])
}

func TestMarkdown_TitleNeverMerged(t *testing.T) {
	s := NewMarkdownSegmenter()
	for _, gap := range []float64{0, 1, 5, 10, 50} {
		blocks := []model.Block{
			at(blk("CAPÍTULO UNO"), 100, 112),
			at(blk("de aquel verano nadie quiso hablar nunca más."), 112+gap, 124+gap),
		}
		segs := s.Segment(blocks)
		require.Len(t, segs, 2, "gap %v", gap)
		assert.Equal(t, model.SegmentTitle, segs[0].Type)
		assert.Equal(t, "CAPÍTULO UNO", segs[0].Text)
	}

	segs := s.Segment([]model.Block{blk("CAPÍTULO UNO"), blk("de aquel verano nadie quiso hablar.")})
	assert.Len(t, segs, 2)
}

func TestMarkdown_DefaultIsSeparate(t *testing.T) {
	segs := NewMarkdownSegmenter().Segment([]model.Block{
		blk("La primera frase termina aquí."),
		blk("La segunda empieza con mayúscula."),
	})
	assert.Len(t, segs, 2)
}

func TestMarkdown_OrdinaryBlocksNeedMeasuredGap(t *testing.T) {
	s := NewMarkdownSegmenter()
	a := "El hombre caminaba bajo la lluvia por"
	b := "Madrid cuando sonaron las campanas."

	segs := s.Segment([]model.Block{at(blk(a), 100, 112), at(blk(b), 114, 126)})
	require.Len(t, segs, 1)
	assert.Equal(t, a+" "+b, segs[0].Text)

	segs = s.Segment([]model.Block{at(blk(a), 100, 112), at(blk(b), 120, 132)})
	assert.Len(t, segs, 2, "gap 8 is above the ordinary gap")

	segs = s.Segment([]model.Block{blk(a), blk(b)})
	assert.Len(t, segs, 2, "unknown gap never counts as measured")
}

func TestMarkdown_OrdinaryBlocksKeepFinishedSentencesApart(t *testing.T) {
	segs := NewMarkdownSegmenter().Segment([]model.Block{
		at(blk("La primera frase termina aquí."), 100, 112),
		at(blk("La segunda empieza con mayúscula."), 114, 126),
	})
	assert.Len(t, segs, 2, "a measured gap of 2 does not join complete paragraphs")
}

func TestMarkdown_DialogueDiscontinuity(t *testing.T) {
	segs := NewMarkdownSegmenter().Segment([]model.Block{
		blk("Y entonces, mirando al suelo, dijo"),
		blk("— de ninguna manera pienso volver."),
	})
	assert.Len(t, segs, 2)
}

func TestMarkdown_MergeNeverGrows(t *testing.T) {
	s := NewMarkdownSegmenter()
	lists := [][]model.Block{
		nil,
		{blk("uno")},
		{blk("Uno sin fin"), blk("de algo"), blk("con algo más"), blk("Final.")},
		{blk("# Título"), blk("texto que sigue"), blk("y sigue"), blk("FIN")},
		{at(blk("El texto"), 10, 20), at(blk("Otro texto"), 21, 30), at(blk("TITULO"), 31, 40), at(blk("más texto"), 41, 50)},
	}
	for i, blocks := range lists {
		groups := s.Merge(blocks)
		assert.LessOrEqual(t, len(groups), len(blocks), "list %d", i)

		var flat []string
		for _, g := range groups {
			if len(g) > 1 {
				for _, b := range g {
					assert.False(t, s.isTitle(b), "title %q merged", b.Text)
				}
			}
			for _, b := range g {
				flat = append(flat, b.Text)
			}
		}
		var want []string
		for _, b := range blocks {
			want = append(want, b.Text)
		}
		assert.Equal(t, want, flat, "list %d keeps order", i)
	}
}

func TestMarkdown_Subdivide(t *testing.T) {
	s := NewMarkdownSegmenter()
	sentence := "Aquella mañana el pueblo despertó cubierto de una niebla espesa."
	long := strings.TrimSpace(strings.Repeat(sentence+" ", 15))
	require.Greater(t, len([]rune(long)), 600)

	in := []model.Block{at(blk(long), 100, 400)}
	parts := s.Subdivide(in)
	assert.Greater(t, len(parts), 1)
	assert.Equal(t, model.TotalNonSpace(in), model.TotalNonSpace(parts))
	for i, p := range parts {
		assert.True(t, p.BBox.IsZero())
		if i < len(parts)-1 {
			assert.GreaterOrEqual(t, len([]rune(p.Text)), 250)
		}
	}
	assert.Equal(t, long, in[0].Text, "input untouched")

	segs := s.Segment(in)
	assert.Len(t, segs, len(parts))
}

func TestMarkdown_SubdivideAtDialogue(t *testing.T) {
	s := NewMarkdownSegmenter()
	narr := strings.Repeat("El viejo miró el mar durante horas sin decir nada a nadie. ", 11)
	text := narr + "\n— ¿Vienes o no? — preguntó el niño desde la puerta.\n— No.\n"
	parts := s.Subdivide([]model.Block{blk(text)})
	require.Greater(t, len(parts), 1)
	last := parts[len(parts)-1].Text
	assert.True(t, strings.HasPrefix(last, "—"), last)
}

func TestMarkdown_HeadingTypes(t *testing.T) {
	segs := NewMarkdownSegmenter().Segment([]model.Block{
		typed(model.BlockTitle, "El libro"),
		typed(model.BlockSection, "Capítulo dos"),
		blk("## Otra parte"),
		blk("**Nota del autor**"),
		blk("Madrid, 3 de mayo de 1920"),
		blk("Texto normal del cuerpo."),
	})
	assert.Equal(t, []model.SegmentType{
		model.SegmentTitle, model.SegmentSection, model.SegmentSection,
		model.SegmentTitle, model.SegmentTitle, model.SegmentParagraph,
	}, types(segs))
	assert.Equal(t, "Otra parte", segs[2].Text)
	assert.Equal(t, "Nota del autor", segs[3].Text)
}

func TestMarkdown_Stats(t *testing.T) {
	s := NewMarkdownSegmenter()
	s.Segment([]model.Block{blk("Nadie supo ver el atractivo"), blk("de esta idea."), blk("FIN")})
	var r StatsReporter = s
	assert.Equal(t, 1, r.Stats()["merges"])
	assert.Equal(t, 1, r.Stats()["title_segments"])
}

func TestVerse_TitledPoem(t *testing.T) {
	segs := NewVerseSegmenter().Segment([]model.Block{
		typed(model.BlockPoemTitle, "Canción de otoño"),
		typed(model.BlockContent, "Hoja que cae\nsin prisa al suelo"),
		typed(model.BlockContent, "el viento calla\ny el árbol duerme"),
	})
	require.Len(t, segs, 2)
	assert.Equal(t, model.SegmentPoemTitle, segs[0].Type)
	assert.Equal(t, "Canción de otoño", segs[0].Text)
	assert.Equal(t, model.SegmentVerse, segs[1].Type)
	assert.Equal(t, "Hoja que cae\nsin prisa al suelo\n\nel viento calla\ny el árbol duerme", segs[1].Text)
	assert.Equal(t, 2, segs[1].Metadata["stanzas"])
	assert.Equal(t, "Canción de otoño", segs[1].Metadata["poem_title"])
}

func TestVerse_InlineTitles(t *testing.T) {
	text := "POEMA I\n\nlinea uno\nlinea dos\n\nII\n\nlinea tres\nlinea cuatro"
	segs := NewVerseSegmenter().Segment([]model.Block{blk(text)})
	assert.Equal(t, []string{"POEMA I", "linea uno\nlinea dos", "II", "linea tres\nlinea cuatro"}, texts(segs))
	assert.Equal(t, []model.SegmentType{
		model.SegmentPoemTitle, model.SegmentVerse, model.SegmentPoemTitle, model.SegmentVerse,
	}, types(segs))
}

func TestVerse_ProseYieldsNothing(t *testing.T) {
	para := strings.Repeat("La historia de aquella familia comenzó mucho antes de que nadie la recordara. ", 3)
	wrapped := "Era una tarde tranquila de otoño en la que nadie esperaba noticias del\n" +
		"norte, y sin embargo el cartero llegó al pueblo con una carta sellada que\n" +
		"nadie en la casa se atrevió a abrir hasta que volvió el padre del campo."

	s := NewVerseSegmenter()
	segs := s.Segment([]model.Block{blk(para), blk(para), blk(wrapped)})
	assert.Empty(t, segs)
	assert.Equal(t, 3, s.Stats()["unplaced_prose"])
	assert.Equal(t, false, s.Stats()["poem_context_opened"])
}

func TestVerse_UntitledStanzas(t *testing.T) {
	segs := NewVerseSegmenter().Segment([]model.Block{
		blk("Verde que te quiero verde.\nVerde viento. Verdes ramas."),
		blk("El barco sobre la mar\ny el caballo en la montaña."),
	})
	require.Len(t, segs, 1)
	assert.Equal(t, model.SegmentVerse, segs[0].Type)
	assert.Equal(t, 2, segs[0].Metadata["stanzas"])
}

func TestVerse_ProseBeforePoemIsKept(t *testing.T) {
	intro := strings.Repeat("Estos poemas fueron escritos durante un largo invierno en la montaña. ", 3)
	segs := NewVerseSegmenter().Segment([]model.Block{
		blk(intro),
		typed(model.BlockPoemTitle, "Soneto 1"),
		blk("Mientras por competir con tu cabello\noro bruñido al sol relumbra en vano"),
	})
	assert.Equal(t, []model.SegmentType{
		model.SegmentContent, model.SegmentPoemTitle, model.SegmentVerse,
	}, types(segs))
}

func TestVerse_LongLineInPoemIsContent(t *testing.T) {
	long := strings.Repeat("una nota al pie que explica el contexto del poema con detalle ", 3)
	segs := NewVerseSegmenter().Segment([]model.Block{
		typed(model.BlockPoemTitle, "Oda"),
		blk("primer verso\nsegundo verso"),
		blk(long),
	})
	assert.Equal(t, []model.SegmentType{
		model.SegmentPoemTitle, model.SegmentVerse, model.SegmentContent,
	}, types(segs))
}

func TestVerse_MaxPoemCharsFlushes(t *testing.T) {
	cfg := DefaultVerseConfig()
	cfg.MaxPoemChars = 20
	segs := NewVerseSegmenterWithConfig(cfg).Segment([]model.Block{
		typed(model.BlockPoemTitle, "Largo"),
		blk("uno dos tres\ncuatro cinco"),
		blk("seis siete ocho\nnueve diez"),
	})
	assert.Equal(t, []model.SegmentType{
		model.SegmentPoemTitle, model.SegmentVerse, model.SegmentVerse,
	}, types(segs))
}

func TestMarkdownVerse(t *testing.T) {
	segs := NewMarkdownVerseSegmenter().Segment([]model.Block{
		typed(model.BlockTitle, "Antología"),
		typed(model.BlockContent, "Prólogo breve."),
		typed(model.BlockPoemTitle, "Uno"),
		typed(model.BlockContent, "a\nb"),
		typed(model.BlockContent, "  c\n\nd  "),
		typed(model.BlockPoemTitle, "Dos"),
		typed(model.BlockContent, "e"),
		typed(model.BlockSection, "Notas"),
		typed(model.BlockContent, "Texto final."),
	})
	assert.Equal(t, []model.SegmentType{
		model.SegmentTitle, model.SegmentContent,
		model.SegmentPoemTitle, model.SegmentVerse,
		model.SegmentPoemTitle, model.SegmentVerse,
		model.SegmentSection, model.SegmentContent,
	}, types(segs))
	assert.Equal(t, "a\nb\n\nc\nd", segs[3].Text)
	assert.Equal(t, "Uno", segs[3].Metadata["poem_title"])
}

func TestMarkdownVerse_TitlePatterns(t *testing.T) {
	s, err := NewMarkdownVerseSegmenterWithOptions(Options{TitlePatterns: []string{`^Soneto\s+\d+$`}})
	require.NoError(t, err)
	segs := s.Segment([]model.Block{
		blk("Soneto 1"),
		blk("verso a\nverso b"),
		blk("Soneto 2"),
		blk("verso c"),
	})
	assert.Equal(t, []string{"Soneto 1", "verso a\nverso b", "Soneto 2", "verso c"}, texts(segs))
	assert.Equal(t, 2, s.Stats()["poems"])
}

func TestHeading_SectionPaths(t *testing.T) {
	segs := NewHeadingSegmenter().Segment([]model.Block{
		blk("Libro primero"),
		blk("Capítulo 1"),
		blk("Texto del primer capítulo."),
		blk("Capítulo 2"),
		blk("Sección uno"),
		blk("Texto de la sección."),
		blk("# Libro segundo"),
		blk("Cierre."),
	})
	require.Len(t, segs, 8)
	assert.Equal(t, model.SegmentTitle, segs[0].Type)
	assert.Equal(t, model.SegmentSection, segs[1].Type)
	assert.Equal(t, []string{"Libro primero", "Capítulo 1"}, segs[2].Metadata["section_path"])
	assert.Equal(t, "Capítulo 1", segs[2].Metadata["section_title"])
	assert.Equal(t, []string{"Libro primero", "Capítulo 2", "Sección uno"}, segs[5].Metadata["section_path"])
	assert.Equal(t, "Libro primero > Capítulo 2 > Sección uno", segs[4].Metadata["section_path_string"])
	assert.Equal(t, "Libro segundo", segs[6].Text)
	assert.Equal(t, []string{"Libro segundo"}, segs[7].Metadata["section_path"])
}

func TestHeading_MaxDepthAndProfilePatterns(t *testing.T) {
	s, err := NewHeadingSegmenterWithOptions(Options{
		SectionPatterns: []string{`^Acto\s+`, `^Escena\s+`},
		Thresholds:      map[string]float64{"max_depth": 1},
	})
	require.NoError(t, err)
	segs := s.Segment([]model.Block{
		blk("Acto primero"),
		blk("Escena 1"),
		blk("Entra el rey."),
	})
	assert.Equal(t, []model.SegmentType{
		model.SegmentTitle, model.SegmentParagraph, model.SegmentParagraph,
	}, types(segs))
	assert.Equal(t, true, segs[1].Metadata["minor_heading"])
	assert.Equal(t, []string{"Acto primero"}, segs[2].Metadata["section_path"])
}

func TestJSONSegmenter(t *testing.T) {
	segs := NewJSONSegmenter().Segment([]model.Block{
		typed(model.BlockTitle, "Uno"),
		typed(model.BlockVerse, "verso"),
		typed(model.BlockContent, "  "),
		typed(model.BlockText, "texto"),
	})
	assert.Equal(t, []model.SegmentType{model.SegmentTitle, model.SegmentVerse, model.SegmentParagraph}, types(segs))
	assert.Equal(t, 3, segs[2].Metadata["block_index"])
}

func TestTitleHelpers(t *testing.T) {
	assert.True(t, isAllCaps("CAPÍTULO UNO", 100))
	assert.False(t, isAllCaps("Capítulo uno", 100))
	assert.False(t, isAllCaps("A1", 100))
	assert.True(t, isRomanHeading("XIV."))
	assert.False(t, isRomanHeading("MIL"))
	assert.False(t, isRomanHeading("mix"))
	assert.True(t, numberedPoem.MatchString("Canto IV"))
	assert.False(t, numberedPoem.MatchString("Canto mi pena"))
	assert.True(t, isDialogue("— Hola"))
	assert.False(t, isDialogue("Hola"))
	assert.Equal(t, "Título", stripMarkup("### **Título**"))
}
