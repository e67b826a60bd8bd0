package handler

import (
	"github.com/davidalvz/pixelmuse/providers"
	"github.com/davidalvz/pixelmuse/storage"
	"github.com/davidalvz/pixelmuse/uploads"
)

// Handler carries the collaborators every route needs. The store and
// provider are interfaces, so handlers never know which backend is wired in.
type Handler struct {
	store    storage.Store
	provider providers.ImageProvider
	uploader *uploads.ClientUploader
}

func New(store storage.Store, provider providers.ImageProvider, uploader *uploads.ClientUploader) *Handler {
	return &Handler{
		store:    store,
		provider: provider,
		uploader: uploader,
	}
}
