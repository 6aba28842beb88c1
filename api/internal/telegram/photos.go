package telegram

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	_ "image/png"
	"io"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"compify/api/internal/util"
)

const (
	debounce  = 1200 * time.Millisecond
	maxPixels = 18_000_000
)

// photoBatch collects the pages of one album (or rapid single photos) until
// the debounce timer fires.
type photoBatch struct {
	key     string
	mu      sync.Mutex
	images  [][]byte
	caption string
	timer   *time.Timer
}

func (r *Router) acceptPhoto(ctx context.Context, msg tgbotapi.Message) {
	cid := msg.Chat.ID
	ph := msg.Photo[len(msg.Photo)-1]
	imgBytes, err := r.fetch(ctx, ph.FileID)
	if err != nil {
		r.log().Warn("photo download failed", zap.Error(err))
		r.send(cid, "Could not download the photo, please send it again.")
		return
	}

	key := "chat:" + fmt.Sprint(cid)
	if msg.MediaGroupID != "" {
		key = "grp:" + msg.MediaGroupID
	}

	bi, _ := r.batches.LoadOrStore(key, &photoBatch{key: key, images: make([][]byte, 0, 4)})
	b := bi.(*photoBatch)

	b.mu.Lock()
	b.images = append(b.images, imgBytes)
	if c := strings.TrimSpace(msg.Caption); c != "" {
		b.caption = c
	}
	if b.timer != nil && b.timer.Stop() {
		r.wg.Done() // the stopped callback will never run
	}
	r.wg.Add(1)
	b.timer = time.AfterFunc(debounce, func() {
		defer r.wg.Done()
		r.processBatch(ctx, key)
	})
	b.mu.Unlock()
}

// processBatch merges the collected pages into the single pending image.
func (r *Router) processBatch(ctx context.Context, key string) {
	bi, ok := r.batches.LoadAndDelete(key)
	if !ok {
		return
	}
	b := bi.(*photoBatch)

	b.mu.Lock()
	images := append([][]byte(nil), b.images...)
	caption := b.caption
	b.mu.Unlock()

	if len(images) == 0 {
		return
	}
	img := images[0]
	if len(images) > 1 {
		merged, err := combineAsOne(images)
		if err != nil {
			r.log().Warn("photo merge failed", zap.Error(err), zap.Int("pages", len(images)))
			r.send(r.OwnerID, "Could not merge the photos, please send them again.")
			return
		}
		img = merged
	}
	r.Chat.SetImage(util.ImageDataURL(img))

	if caption != "" {
		r.Chat.SetText(caption)
		r.submit(ctx)
		return
	}
	r.send(r.OwnerID, fmt.Sprintf("📎 Photo attached (%d page(s)). Add a description or /send to solve.", len(images)))
}

// combineAsOne stacks pages vertically on white, centred, and re-encodes as
// JPEG, scaling down when the result exceeds maxPixels.
func combineAsOne(images [][]byte) ([]byte, error) {
	pages := make([]image.Image, 0, len(images))
	width, height := 0, 0
	for i, raw := range images {
		img, _, err := image.Decode(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		pages = append(pages, img)
		width = max(width, img.Bounds().Dx())
		height += img.Bounds().Dy()
	}
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("empty images")
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	y := 0
	for _, img := range pages {
		b := img.Bounds()
		x := (width - b.Dx()) / 2
		draw.Draw(canvas, image.Rect(x, y, x+b.Dx(), y+b.Dy()), img, b.Min, draw.Over)
		y += b.Dy()
	}

	var out image.Image = canvas
	if total := width * height; total > maxPixels {
		scale := math.Sqrt(float64(maxPixels) / float64(total))
		out = scaleDownNN(canvas, max(1, int(float64(width)*scale+0.5)), max(1, int(float64(height)*scale+0.5)))
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// scaleDownNN is nearest-neighbour resampling; good enough for photographed text.
func scaleDownNN(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	sb := src.Bounds()
	for y := 0; y < h; y++ {
		sy := sb.Min.Y + y*sb.Dy()/h
		for x := 0; x < w; x++ {
			dst.Set(x, y, src.At(sb.Min.X+x*sb.Dx()/w, sy))
		}
	}
	return dst
}

func (r *Router) fetch(ctx context.Context, fileID string) ([]byte, error) {
	if r.Download != nil {
		return r.Download(ctx, fileID)
	}
	url, err := r.Bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, err
	}
	return download(ctx, url)
}

func download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	return io.ReadAll(resp.Body)
}

var httpClient = &http.Client{Timeout: 60 * time.Second}
