package storages

import (
	"context"
	"fmt"
)

// BlobStore - where produced artifacts (sheet JPEGs, assembled PDFs) are
// persisted and made fetchable over plain HTTP for the local agents.
type BlobStore interface {
	Init() error
	Close() error
	GetConf() *Conf

	// Upload persists data under path and returns the public URL an agent
	// can fetch it from. path is slash-separated and relative, e.g.
	// "jobs/<id>/sheet1.jpg".
	Upload(ctx context.Context, data []byte, path string, contentType string) (string, error)
}

//---- BlobStore Factory ----

type BlobStoreFactory func(conf *Conf) (BlobStore, error)

var factories = map[string]BlobStoreFactory{}

func RegisterFactory(storeType string, factory BlobStoreFactory) {
	factories[storeType] = factory
}

func New(conf *Conf) (BlobStore, error) {
	factory, ok := factories[conf.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported blob store type: %s", conf.Type)
	}
	return factory(conf)
}
