// Package ticket renders the downloadable proof of a confirmed booking: a PNG
// carrying the event details and a QR code with a signed booking reference.
package ticket

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"

	"github.com/Shivanand-hulikatti/eventhub/internal/model"
	"github.com/skip2/go-qrcode"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Canvas geometry.
const (
	Width  = 800
	Height = 350

	headerHeight = 60
	qrSize       = 200
	margin       = 30
)

// ContentType of every rendered ticket.
const ContentType = "image/png"

// ErrInvalidPayload is returned when a QR payload is malformed or its
// signature does not match.
var ErrInvalidPayload = errors.New("invalid ticket payload")

var (
	headerColor = color.RGBA{R: 0x1e, G: 0x3a, B: 0x8a, A: 0xff}
	textColor   = color.RGBA{R: 0x11, G: 0x18, B: 0x27, A: 0xff}
	mutedColor  = color.RGBA{R: 0x4b, G: 0x55, B: 0x63, A: 0xff}
	okColor     = color.RGBA{R: 0x05, G: 0x96, B: 0x69, A: 0xff}
)

// Artifact is a rendered ticket ready to be served as a download.
type Artifact struct {
	Filename    string
	ContentType string
	ShortCode   string
	Payload     string
	Data        []byte
}

// Claim is the booking reference recovered from a verified payload.
type Claim struct {
	BookingID string
	EventID   string
}

// Generator renders and verifies tickets. The secret signs QR payloads.
type Generator struct {
	secret []byte
}

// NewGenerator constructs a Generator.
func NewGenerator(secret string) *Generator {
	return &Generator{secret: []byte(secret)}
}

// Generate renders the ticket of a confirmed booking. The booking must carry
// its event.
func (g *Generator) Generate(b *model.Booking) (*Artifact, error) {
	if b.Status != model.StatusConfirmed {
		return nil, model.ErrInvalidState
	}
	if b.Event == nil {
		return nil, fmt.Errorf("render ticket %s: booking has no event", b.ID)
	}

	payload := g.Payload(b)
	qr, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	img := g.render(b, qr.Image(qrSize))

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	code := b.ShortCode()
	return &Artifact{
		Filename:    "event-ticket-" + code + ".png",
		ContentType: ContentType,
		ShortCode:   code,
		Payload:     payload,
		Data:        buf.Bytes(),
	}, nil
}

// Payload is the QR content: booking:<id>;event:<event id>;signature:<hex>.
func (g *Generator) Payload(b *model.Booking) string {
	return fmt.Sprintf("booking:%s;event:%s;signature:%s", b.ID, b.EventID, g.sign(b.ID, b.EventID))
}

// Verify checks a scanned payload and returns the booking it refers to.
func (g *Generator) Verify(payload string) (Claim, error) {
	parts := strings.Split(strings.TrimSpace(payload), ";")
	if len(parts) != 3 ||
		!strings.HasPrefix(parts[0], "booking:") ||
		!strings.HasPrefix(parts[1], "event:") ||
		!strings.HasPrefix(parts[2], "signature:") {
		return Claim{}, ErrInvalidPayload
	}

	claim := Claim{
		BookingID: strings.TrimPrefix(parts[0], "booking:"),
		EventID:   strings.TrimPrefix(parts[1], "event:"),
	}
	signature := strings.TrimPrefix(parts[2], "signature:")
	if claim.BookingID == "" || !hmac.Equal([]byte(g.sign(claim.BookingID, claim.EventID)), []byte(signature)) {
		return Claim{}, ErrInvalidPayload
	}
	return claim, nil
}

func (g *Generator) sign(bookingID, eventID string) string {
	h := hmac.New(sha256.New, g.secret)
	h.Write([]byte(bookingID + ":" + eventID))
	return hex.EncodeToString(h.Sum(nil))
}

func (g *Generator) render(b *model.Booking, qr image.Image) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(0, 0, Width, headerHeight), image.NewUniform(headerColor), image.Point{}, draw.Src)

	drawText(img, margin, 18, 3, color.White, "EVENT TICKET")

	e := b.Event
	textWidth := Width - qrSize - 3*margin
	drawText(img, margin, 85, 2, textColor, fit(e.Title, textWidth, 2))

	details := []string{
		"Location: " + e.Location,
		"Date: " + e.Date.Format("Mon, Jan 2, 2006"),
		"Time: " + e.Time,
		fmt.Sprintf("Tickets: %d", b.TicketCount),
	}
	for i, line := range details {
		drawText(img, margin, 130+i*32, 2, mutedColor, fit(line, textWidth, 2))
	}

	drawText(img, margin, Height-40, 1, mutedColor, "Booking ID: "+b.ShortCode())
	drawText(img, margin+220, Height-40, 1, okColor, "Status: "+strings.ToUpper(string(b.Status)))

	qrRect := image.Rect(Width-qrSize-margin, headerHeight+margin, Width-margin, headerHeight+margin+qrSize)
	draw.Draw(img, qrRect, qr, qr.Bounds().Min, draw.Src)

	return img
}

var face = basicfont.Face7x13

// fit shortens s with an ellipsis so it spans at most width pixels at scale.
func fit(s string, width, scale int) string {
	limit := width / (face.Advance * scale)
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit <= 3 {
		return string(r[:limit])
	}
	return string(r[:limit-3]) + "..."
}

// drawText writes s with its top-left corner at (x, y), magnified by an
// integer scale. The bitmap face is rendered at native size and then scaled
// with nearest-neighbour sampling to keep glyph edges crisp.
func drawText(dst draw.Image, x, y, scale int, c color.Color, s string) {
	if s == "" {
		return
	}
	w := font.MeasureString(face, s).Ceil()
	h := face.Height

	src := image.NewRGBA(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  src,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(s)

	xdraw.NearestNeighbor.Scale(dst, image.Rect(x, y, x+w*scale, y+h*scale), src, src.Bounds(), xdraw.Over, nil)
}
