package parser

import (
	"bytes"
	"compress/zlib"
	"encoding/ascii85"
	"image"
	"image/jpeg"
	"io/ioutil"
	"math/rand"
	"reflect"
	"testing"

	"github.com/hhrutter/lzw"
	cs "github.com/jferard/minimalpdfparser/contentstream"
	"github.com/jferard/minimalpdfparser/model"
	pdffilter "github.com/pdfcpu/pdfcpu/pkg/filter"
)

var ops = [...]cs.Operation{
	// inline image data has its own test
	//   cs.OpBeginImage{},
	cs.OpMoveSetShowText{},
	cs.OpMoveShowText{},
	cs.OpFillStroke{},
	cs.OpEOFillStroke{},
	cs.OpBeginMarkedContent{},
	cs.OpBeginMarkedContent{
		Properties: cs.PropertyListName("dsdd"),
	},
	cs.OpBeginMarkedContent{
		Properties: cs.PropertyListDict{"slmkds": Array{}},
	},
	cs.OpBeginText{},
	cs.OpBeginIgnoreUndef{},
	cs.OpSetStrokeColorSpace{},
	cs.OpMarkPoint{},
	cs.OpMarkPoint{
		Properties: cs.PropertyListName("dsdd"),
	},
	cs.OpMarkPoint{
		Properties: cs.PropertyListDict{"slmkds": Array{}},
	},
	cs.OpXObject{},
	cs.OpEndMarkedContent{},
	cs.OpEndText{},
	cs.OpEndIgnoreUndef{},
	cs.OpFill{},
	cs.OpSetStrokeGray{},
	cs.OpSetLineCap{},
	cs.OpSetStrokeCMYKColor{},
	cs.OpSetMiterLimit{},
	cs.OpRestore{},
	cs.OpSetStrokeRGBColor{},
	cs.OpStroke{},
	cs.OpSetStrokeColor{},
	cs.OpSetStrokeColorN{
		Color: []Fl{4, 5, 6},
	},
	cs.OpTextNextLine{},
	cs.OpTextMoveSet{},
	cs.OpShowSpaceText{
		Texts: []cs.TextSpaced{
			{CharCodes: "msdùlùd", SpaceSubtractedAfter: 12},
			{CharCodes: "AB", SpaceSubtractedAfter: -5},
			{CharCodes: "c", SpaceSubtractedAfter: 2},
			{CharCodes: "('')\\", SpaceSubtractedAfter: 0},
		},
	},
	cs.OpSetTextLeading{},
	cs.OpSetCharSpacing{},
	cs.OpTextMove{},
	cs.OpSetFont{},
	cs.OpShowText{},
	cs.OpSetTextMatrix{},
	cs.OpSetTextRender{},
	cs.OpSetTextRise{},
	cs.OpSetWordSpacing{},
	cs.OpSetHorizScaling{},
	cs.OpClip{},
	cs.OpEOClip{},
	cs.OpCloseFillStroke{},
	cs.OpCloseEOFillStroke{},
	cs.OpCurveTo{},
	cs.OpConcat{},
	cs.OpSetFillColorSpace{},
	cs.OpSetDash{},
	cs.OpSetCharWidth{},
	cs.OpSetCacheDevice{},
	cs.OpFill{},
	cs.OpEOFill{},
	cs.OpSetFillGray{},
	cs.OpSetExtGState{},
	cs.OpClosePath{},
	cs.OpSetFlat{},
	cs.OpSetLineJoin{},
	cs.OpSetFillCMYKColor{},
	cs.OpLineTo{},
	cs.OpMoveTo{},
	cs.OpEndPath{},
	cs.OpSave{},
	cs.OpRectangle{},
	cs.OpSetFillRGBColor{},
	cs.OpSetRenderingIntent{},
	cs.OpCloseStroke{},
	cs.OpSetFillColor{},
	cs.OpSetFillColorN{Pattern: "sese"},
	cs.OpShFill{},
	cs.OpCurveTo1{},
	cs.OpSetLineWidth{},
	cs.OpCurveTo{},
}

func randOp() cs.Operation {
	j := rand.Intn(len(ops))
	return ops[j]
}

func randOps(nops int) []cs.Operation {
	l := make([]cs.Operation, nops)
	for i := range l {
		l[i] = randOp()
	}
	return l
}

func TestParseContentOps(t *testing.T) {
	exp := randOps(5000)
	ct := cs.WriteOperations(exp...)
	got, err := ParseContent(ct)
	if err != nil {
		t.Fatal(err)
	}
	if len(exp) != len(got) {
		t.Errorf("expected %d ops, got %d", len(exp), len(got))
	}
	for i := range exp {
		if !reflect.DeepEqual(exp[i], got[i]) {
			t.Errorf("expected %v got %v", exp[i], got[i])
		}
	}

	for _, op := range got {
		_, err := ParseContent(cs.WriteOperations(op))
		if err != nil {
			t.Error(err)
		}
	}
}

func TestSkipInvalidOps(t *testing.T) {
	// operations with invalid operands or unknown
	// operators are skipped, not fatal
	for _, tc := range []struct {
		input string
		want  []cs.Operation
	}{
		{"(text) 5 Tj BT", []cs.Operation{cs.OpBeginText{}}},
		{"/Name unknowncmd q", []cs.Operation{cs.OpSave{}}},
		{"[(A) /Name (B)]TJ", nil},
		{"BT (dangling operands", nil},
		{"BT (dangling operands)", []cs.Operation{cs.OpBeginText{}}},
		{"4 5 standalone'", nil}, // unknown operator
	} {
		got, err := ParseContent([]byte(tc.input))
		if tc.want == nil && err != nil {
			continue // hard errors are allowed for these
		}
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("input %s: expected %v, got %v", tc.input, tc.want, got)
		}
	}
}

func TestTextSpaced(t *testing.T) {
	input := []byte("[45. (A) 20 20. (B)]TJ")
	got, err := ParseContent(input)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatal()
	}
	tj, ok := got[0].(cs.OpShowSpaceText)
	if !ok {
		t.Fatal()
	}
	expected := cs.OpShowSpaceText{Texts: []cs.TextSpaced{
		{CharCodes: "", SpaceSubtractedAfter: 45},
		{CharCodes: "A", SpaceSubtractedAfter: 40},
		{CharCodes: "B"},
	}}
	if !reflect.DeepEqual(tj, expected) {
		t.Errorf("expected %v got %v", expected, tj)
	}
}

func TestNormalizeSpacedText(t *testing.T) {
	in := "[(AB) (CD) 4 6 (AB) 5]TJ"
	got, err := ParseContent([]byte(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatal()
	}
	exp := cs.OpShowSpaceText{
		Texts: []cs.TextSpaced{
			{CharCodes: "ABCD", SpaceSubtractedAfter: 10},
			{CharCodes: "AB", SpaceSubtractedAfter: 5},
		},
	}
	if !reflect.DeepEqual(got[0], exp) {
		t.Errorf("expected merged %v got %v", exp, got[0])
	}
}

func randJPEG(size int) ([]byte, error) {
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for i := range img.Pix {
		img.Pix[i] = uint8(rand.Int())
	}
	err := jpeg.Encode(&buf, img, nil)
	return buf.Bytes(), err
}

// encode 30x30 gray pixels with the given filter
func forgeImageContent(t *testing.T, fi model.Name) []byte {
	t.Helper()
	pixels := make([]byte, 30*30)
	_, _ = rand.Read(pixels)

	var buf bytes.Buffer
	switch fi {
	case model.Flate:
		w := zlib.NewWriter(&buf)
		_, _ = w.Write(pixels)
		_ = w.Close()
	case model.LZW:
		w := lzw.NewWriter(&buf, true)
		_, _ = w.Write(pixels)
		_ = w.Close()
	case model.ASCII85:
		w := ascii85.NewEncoder(&buf)
		_, _ = w.Write(pixels)
		_ = w.Close()
		buf.WriteString("~>")
	case model.DCT:
		b, err := randJPEG(30)
		if err != nil {
			t.Fatal(err)
		}
		return b
	default:
		fl, err := pdffilter.NewFilter(string(fi), nil)
		if err != nil {
			t.Fatal(err)
		}
		r, err := fl.Encode(bytes.NewReader(pixels))
		if err != nil {
			t.Fatal(err)
		}
		b, err := ioutil.ReadAll(r)
		if err != nil {
			t.Fatal(err)
		}
		return b
	}
	return buf.Bytes()
}

func createImageStream(t *testing.T, fi model.Name) cs.OpBeginImage {
	space := model.Name("DeviceGray")
	if fi == model.DCT {
		space = "DeviceRGB"
	}
	return cs.OpBeginImage{
		Fields: Dict{
			"BPC": Integer(8),
			"CS":  space,
			"H":   Integer(30),
			"W":   Integer(30),
		},
		Filters: model.Filters{{Name: fi, DecodeParms: map[string]int{"unusedint": 4}}},
		Content: forgeImageContent(t, fi),
	}
}

func TestInlineData(t *testing.T) {
	filtersName := []model.ObjName{
		model.ASCII85,
		model.ASCIIHex,
		model.Flate,
		model.LZW,
		model.RunLength,
		model.DCT,
	}
	for _, fi := range filtersName {
		st := createImageStream(t, fi)

		var content bytes.Buffer
		st.Add(&content)
		contentStream := append(content.Bytes(), " f s /DeviceRGB cs"...)
		got, err := ParseContent(contentStream)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 4 {
			t.Fatalf("expected 4 operations, got %v", got)
		}
		img, ok := got[0].(cs.OpBeginImage)
		if !ok {
			t.Fatalf("expected Image, got %v", got[0])
		}
		if !bytes.Equal(img.Content, st.Content) {
			t.Errorf("failed to retrieve image data with filter %s", fi)
		}
		if !reflect.DeepEqual(img.Fields, st.Fields) {
			t.Errorf("expected %v got %v", st.Fields, img.Fields)
		}
		if !reflect.DeepEqual(img.Filters, st.Filters) {
			t.Errorf("expected %v got %v", st.Filters, img.Filters)
		}
	}
}

func TestInlineDataUnfiltered(t *testing.T) {
	in := "BI /Width 2 /H 2 /BitsPerComponent 8 /ColorSpace /DeviceGray ID \x01\x02\x03\x04 EI q"
	got, err := ParseContent([]byte(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 operations, got %v", got)
	}
	img, ok := got[0].(cs.OpBeginImage)
	if !ok {
		t.Fatalf("expected Image, got %v", got[0])
	}
	// long field names are normalized
	exp := Dict{"W": Integer(2), "H": Integer(2), "BPC": Integer(8), "CS": Name("DeviceGray")}
	if !reflect.DeepEqual(img.Fields, exp) {
		t.Errorf("expected %v got %v", exp, img.Fields)
	}
	if !bytes.Equal(img.Content, []byte{1, 2, 3, 4}) {
		t.Errorf("unexpected content %v", img.Content)
	}

	// an image mask is 1 bit per pixel
	in = "BI /IM true /W 8 /H 2 ID \xF0\x0F EI"
	got, err = ParseContent([]byte(in))
	if err != nil {
		t.Fatal(err)
	}
	img = got[0].(cs.OpBeginImage)
	if !bytes.Equal(img.Content, []byte{0xF0, 0x0F}) {
		t.Errorf("unexpected content %v", img.Content)
	}

	// corrupt BI expressions are fatal
	for _, bad := range []string{
		"BI ID 78 EI",
		"BI /W 1 (value) ID 7 EI",
	} {
		if _, err := ParseContent([]byte(bad)); err == nil {
			t.Errorf("expected error on %s", bad)
		}
	}
}
