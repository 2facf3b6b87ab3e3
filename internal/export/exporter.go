package export

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"contentflow/internal/checklist"
)

var ErrNothingToExport = errors.New("export: output is empty")

const (
	imageContentType = "image/jpeg"
	textContentType  = "text/plain; charset=utf-8"
)

// Asset describes one exported file.
type Asset struct {
	Key         string `json:"key"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
	URL         string `json:"url"`
}

type Exporter struct {
	store    Store
	basePath string
	now      func() time.Time
	log      zerolog.Logger
}

// NewExporter writes assets to store. Assets without a direct store URL are
// addressed under basePath, which the gateway serves.
func NewExporter(store Store, basePath string, logger zerolog.Logger) *Exporter {
	if basePath == "" {
		basePath = "/assets/"
	}
	if !strings.HasSuffix(basePath, "/") {
		basePath += "/"
	}
	return &Exporter{
		store:    store,
		basePath: basePath,
		now:      time.Now,
		log:      logger.With().Str("component", "export").Logger(),
	}
}

// Export stores out as a downloadable file for itemID. Images become JPEG
// files and text becomes a plain text note.
func (e *Exporter) Export(ctx context.Context, itemID string, out checklist.Output) (Asset, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return Asset{}, fmt.Errorf("%w: item id is required", ErrInvalidKey)
	}
	if out.IsEmpty() {
		return Asset{}, ErrNothingToExport
	}

	ts := e.now().UnixMilli()
	var (
		data        []byte
		name        string
		contentType string
	)
	switch out.Type {
	case checklist.OutputImage:
		mediaType, raw, err := DecodeDataURI(string(out.Image))
		if err != nil {
			return Asset{}, err
		}
		data = raw
		contentType = mediaType
		name = fmt.Sprintf("contentflow-image-%d.jpg", ts)
	case checklist.OutputText:
		data = []byte(out.Text)
		contentType = textContentType
		name = fmt.Sprintf("contentflow-notes-%d.txt", ts)
	default:
		return Asset{}, fmt.Errorf("unsupported output type %q", out.Type)
	}

	key := path.Join(itemID, uuid.NewString(), name)
	if err := e.store.Put(ctx, key, data, contentType); err != nil {
		return Asset{}, fmt.Errorf("store asset: %w", err)
	}
	url, err := e.store.GetURL(ctx, key)
	if err != nil {
		e.log.Warn().Err(err).Str("key", key).Msg("presign failed, using gateway path")
		url = ""
	}
	if url == "" {
		url = e.basePath + key
	}
	e.log.Info().Str("item", itemID).Str("key", key).Int("bytes", len(data)).Msg("asset exported")
	return Asset{
		Key:         key,
		FileName:    name,
		ContentType: contentType,
		Size:        len(data),
		URL:         url,
	}, nil
}

// Open reads an exported asset back.
func (e *Exporter) Open(ctx context.Context, key string) (Object, error) {
	return e.store.Get(ctx, key)
}
