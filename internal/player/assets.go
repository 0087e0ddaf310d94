package player

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	ioutils "github.com/handiism/vinyl-player/internal/io"
	"github.com/handiism/vinyl-player/internal/model"
)

// ErrRemoteDisabled is returned for http(s) assets when no Fetcher is set.
var ErrRemoteDisabled = errors.New("remote assets are not enabled")

// resolve loads an asset given as a local path, a file:// URL or an
// http(s) URL.
func (p *Player) resolve(ctx context.Context, ref string) (model.Asset, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return model.Asset{}, errors.New("empty asset location")
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	u, err := url.Parse(ref)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Plain paths, including Windows drive letters.
		return model.LoadAsset(ioutils.ExpandHome(ref))
	}

	switch u.Scheme {
	case "file":
		return model.LoadAsset(u.Path)
	case "http", "https":
		if p.fetcher == nil {
			return model.Asset{}, fmt.Errorf("%w: %s", ErrRemoteDisabled, ref)
		}
		data, err := p.fetcher.DownloadBytes(ctx, ref, nil)
		if err != nil {
			return model.Asset{}, fmt.Errorf("fetch %s: %w", ref, err)
		}
		name := path.Base(u.Path)
		if name == "." || name == "/" {
			name = u.Host
		}
		return model.Asset{Name: name, Data: data}, nil
	default:
		return model.Asset{}, fmt.Errorf("unsupported asset scheme %q", u.Scheme)
	}
}

// loadArt resolves ref and checks that it decodes as an image.
func (p *Player) loadArt(ref string) (model.Asset, error) {
	ctx := p.context()
	a, err := p.resolve(ctx, ref)
	if err != nil {
		return model.Asset{}, err
	}
	if _, err := p.images.LoadArt(ctx, a.Data, artCheckSize); err != nil {
		return model.Asset{}, err
	}
	return a, nil
}
