package main

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/hupe1980/lshdedup/blobstore"
	"github.com/hupe1980/lshdedup/blobstore/minio"
	"github.com/hupe1980/lshdedup/blobstore/s3"
)

// location is a parsed input or output argument:
//
//	path/to/file.csv
//	file:///abs/path/file.csv
//	s3://bucket/key
//	minio://host:port/bucket/key
type location struct {
	Scheme string
	Host   string // minio endpoint
	Bucket string
	Name   string // key, or base name for local files
	Dir    string // local directory
}

func parseLocation(raw string) (location, error) {
	if !strings.Contains(raw, "://") {
		return localLocation(raw), nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return location{}, fmt.Errorf("invalid location %q: %w", raw, err)
	}

	switch u.Scheme {
	case "file":
		return localLocation(u.Path), nil
	case "s3":
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return location{}, fmt.Errorf("invalid location %q: want s3://bucket/key", raw)
		}
		return location{Scheme: "s3", Bucket: u.Host, Name: key}, nil
	case "minio":
		bucket, key, ok := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
		if u.Host == "" || !ok || bucket == "" || key == "" {
			return location{}, fmt.Errorf("invalid location %q: want minio://host:port/bucket/key", raw)
		}
		return location{Scheme: "minio", Host: u.Host, Bucket: bucket, Name: key}, nil
	default:
		return location{}, fmt.Errorf("invalid location %q: unsupported scheme %q", raw, u.Scheme)
	}
}

func localLocation(p string) location {
	return location{
		Scheme: "file",
		Dir:    filepath.Dir(p),
		Name:   filepath.Base(p),
	}
}

// open returns the store holding the location and the blob name within it.
func (a *app) open(ctx context.Context, raw string) (blobstore.BlobStore, string, error) {
	loc, err := parseLocation(raw)
	if err != nil {
		return nil, "", err
	}

	switch loc.Scheme {
	case "s3":
		opts := []s3.Option{s3.WithRegion(a.cfg.S3.Region)}
		if a.cfg.S3.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(a.cfg.S3.Endpoint))
		}
		store, err := s3.New(ctx, loc.Bucket, opts...)
		if err != nil {
			return nil, "", err
		}
		return store, loc.Name, nil
	case "minio":
		store, err := minio.Dial(loc.Host, loc.Bucket, "", !a.cfg.MinIO.Insecure)
		if err != nil {
			return nil, "", err
		}
		return store, loc.Name, nil
	default:
		return blobstore.NewLocalStore(loc.Dir), loc.Name, nil
	}
}
