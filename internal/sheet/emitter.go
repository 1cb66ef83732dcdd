package sheet

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/document"
	"seehuhn.de/go/pdf/font"
	"seehuhn.de/go/pdf/font/type1"
	"seehuhn.de/go/pdf/graphics"
	"seehuhn.de/go/pdf/graphics/color"
	pdfimage "seehuhn.de/go/pdf/graphics/image"
	"seehuhn.de/go/pdf/graphics/matrix"

	"github.com/multiaccess-studios/proxyprint/internal/layout"
)

const ptPerMM = 72.0 / 25.4

const jpegQuality = 95

// Emitter turns a selection with fetched images into a printable PDF.
type Emitter struct {
	Geometry layout.Geometry
	Log      *zap.Logger
}

func NewEmitter(g layout.Geometry, log *zap.Logger) *Emitter {
	return &Emitter{Geometry: g, Log: log}
}

// Emit writes the sheet PDF to path. The document is assembled in a temp
// file next to the destination and renamed into place only once complete, so
// a failed or cancelled run never leaves a partial PDF. A slot whose image
// is missing gets a labeled placeholder frame instead.
func (e *Emitter) Emit(ctx context.Context, path string, items []Item, images []image.Image, errs []error) error {
	plan, err := layout.Paginate(e.Geometry, len(items))
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpName)

	paper := document.A4
	if e.Geometry.Paper == layout.PaperLetter {
		paper = document.Letter
	}
	doc, err := document.CreateMultiPage(tmpName, paper, pdf.V1_7, nil)
	if err != nil {
		return err
	}

	F, err := type1.Helvetica.Embed(doc.Out, nil)
	if err != nil {
		return err
	}

	embedded := make(map[string]*graphics.XObject, len(items))
	placeholders := 0

	for pageNo, pg := range plan.Pages {
		if err := ctx.Err(); err != nil {
			return err
		}

		page := doc.AddPage()
		for slot := 0; slot < pg.Count; slot++ {
			idx := pg.Start + slot
			item := items[idx]

			if errs[idx] != nil || images[idx] == nil {
				placeholders++
				e.drawPlaceholder(page, F, slot, item)
				continue
			}

			img, err := e.embedImage(page.Out, embedded, item.URL, images[idx])
			if err != nil {
				return err
			}
			e.drawImage(page, img, slot)
		}
		e.drawMarks(page)

		if err := page.Close(); err != nil {
			return err
		}
		e.Log.Debug("page emitted",
			zap.Int("page", pageNo+1),
			zap.Int("slots", pg.Count))
	}

	if err := doc.Close(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e.Log.Info("sheet written",
		zap.String("path", path),
		zap.Int("pages", len(plan.Pages)),
		zap.Int("cards", plan.Total),
		zap.Int("placeholders", placeholders))

	return os.Rename(tmpName, path)
}

// embedImage embeds an image into the document once per URL as a DCTDecode
// XObject, cropped and downscaled for its slot.
func (e *Emitter) embedImage(out pdf.Putter, embedded map[string]*graphics.XObject, url string, img image.Image) (*graphics.XObject, error) {
	if obj, ok := embedded[url]; ok {
		return obj, nil
	}

	rect := e.Geometry.SlotRect(0)
	img = prepare(img, rect.W, rect.H)

	obj, err := pdfimage.EmbedJPEG(out, img, &jpeg.Options{Quality: jpegQuality}, "")
	if err != nil {
		return nil, err
	}
	embedded[url] = obj
	return obj, nil
}

func (e *Emitter) drawImage(page *document.Page, img *graphics.XObject, slot int) {
	r := e.Geometry.SlotRect(slot)

	page.PushGraphicsState()
	M := matrix.Scale(r.W*ptPerMM, r.H*ptPerMM)
	M = M.Mul(matrix.Translate(r.X*ptPerMM, r.Y*ptPerMM))
	page.Transform(M)
	page.DrawXObject(img)
	page.PopGraphicsState()
}

var (
	placeholderGray = color.DeviceGray.New(0.5)
	guideBlack      = color.DeviceGray.New(0.0)
)

// drawPlaceholder frames a slot whose image could not be fetched and labels
// it with the printing's title and id so the gap is identifiable on paper.
func (e *Emitter) drawPlaceholder(page *document.Page, F font.Layouter, slot int, item Item) {
	r := e.Geometry.SlotTrimRect(slot)
	x, y := r.X*ptPerMM, r.Y*ptPerMM
	w, h := r.W*ptPerMM, r.H*ptPerMM

	page.PushGraphicsState()
	page.SetStrokeColor(placeholderGray)
	page.SetLineWidth(1)
	page.Rectangle(x+2, y+2, w-4, h-4)
	page.Stroke()
	page.PopGraphicsState()

	page.SetFillColor(guideBlack)
	page.TextSetFont(F, 10)
	page.TextStart()
	page.TextFirstLine(x+8, y+h-20)
	page.TextShow(item.Title)
	page.TextEnd()

	if item.ID > 0 {
		label := fmt.Sprintf("#%d", item.ID)
		if item.Face > 0 {
			label = fmt.Sprintf("#%d.%d", item.ID, item.Face)
		}
		page.TextSetFont(F, 8)
		page.TextStart()
		page.TextFirstLine(x+8, y+h-34)
		page.TextShow(label)
		page.TextEnd()
	}
}

func (e *Emitter) drawMarks(page *document.Page) {
	guides := e.Geometry.Marks()
	if len(guides) == 0 {
		return
	}

	page.PushGraphicsState()
	page.SetStrokeColor(guideBlack)
	page.SetLineWidth(e.Geometry.GuideWidth() * ptPerMM)
	for _, g := range guides {
		page.MoveTo(g.X1*ptPerMM, g.Y1*ptPerMM)
		page.LineTo(g.X2*ptPerMM, g.Y2*ptPerMM)
	}
	page.Stroke()
	page.PopGraphicsState()
}
