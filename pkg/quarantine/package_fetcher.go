// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package quarantine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

func getJSON(ctx context.Context, client *http.Client, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// pypiResponse and npmResponse capture just enough of each registry's
// metadata document to locate a tarball URL; neither package ever executes
// anything from the registry response itself.
type pypiResponse struct {
	URLs []struct {
		URL        string `json:"url"`
		PackageTyp string `json:"packagetype"`
	} `json:"urls"`
	Releases map[string][]struct {
		URL        string `json:"url"`
		PackageTyp string `json:"packagetype"`
	} `json:"releases"`
	Info struct {
		Version string `json:"version"`
	} `json:"info"`
}

type npmResponse struct {
	DistTags struct {
		Latest string `json:"latest"`
	} `json:"dist-tags"`
	Versions map[string]struct {
		Dist struct {
			Tarball string `json:"tarball"`
		} `json:"dist"`
	} `json:"versions"`
}

// DefaultPackageFetcher resolves a package name (and optional version) to a
// tarball URL via the public PyPI or npm registry API, then reuses
// DefaultUrlFetcher to download and extract it. No install-time hook of
// either ecosystem (setup.py, package.json "scripts") is ever invoked.
type DefaultPackageFetcher struct {
	HTTP *http.Client
	URL  DefaultUrlFetcher

	// MaxBytes bounds the downloaded tarball, same contract as UrlFetcher.Get.
	MaxBytes int64
}

// Download implements PackageFetcher.
func (p *DefaultPackageFetcher) Download(ctx context.Context, manager, name, version, dest string) error {
	var tarballURL string
	var err error

	switch manager {
	case "pip":
		tarballURL, err = p.resolvePypi(ctx, name, version)
	case "npm":
		tarballURL, err = p.resolveNpm(ctx, name, version)
	default:
		return fmt.Errorf("unsupported package manager %q", manager)
	}
	if err != nil {
		return err
	}

	maxBytes := p.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 200 << 20
	}
	_, err = p.URL.Get(ctx, tarballURL, dest, maxBytes)
	return err
}

func (p *DefaultPackageFetcher) client() *http.Client {
	if p.HTTP != nil {
		return p.HTTP
	}
	return p.URL.client()
}

func (p *DefaultPackageFetcher) resolvePypi(ctx context.Context, name, version string) (string, error) {
	return p.resolvePypiAt(ctx, "https://pypi.org", name, version)
}

// resolvePypiAt takes the registry base URL as a parameter so tests can point
// it at an httptest server instead of the real PyPI.
func (p *DefaultPackageFetcher) resolvePypiAt(ctx context.Context, base, name, version string) (string, error) {
	path := fmt.Sprintf("%s/pypi/%s/json", base, name)
	if version != "" {
		path = fmt.Sprintf("%s/pypi/%s/%s/json", base, name, version)
	}

	var meta pypiResponse
	if err := getJSON(ctx, p.client(), path, &meta); err != nil {
		return "", fmt.Errorf("resolve pypi package %q: %w", name, err)
	}

	urls := meta.URLs
	if version != "" && len(urls) == 0 {
		if rel, ok := meta.Releases[version]; ok {
			for _, r := range rel {
				if r.PackageTyp == "sdist" {
					return r.URL, nil
				}
			}
			if len(rel) > 0 {
				return rel[0].URL, nil
			}
		}
	}
	for _, u := range urls {
		if u.PackageTyp == "sdist" {
			return u.URL, nil
		}
	}
	if len(urls) > 0 {
		return urls[0].URL, nil
	}
	return "", fmt.Errorf("no downloadable artifact found for pypi package %q", name)
}

func (p *DefaultPackageFetcher) resolveNpm(ctx context.Context, name, version string) (string, error) {
	return p.resolveNpmAt(ctx, "https://registry.npmjs.org", name, version)
}

// resolveNpmAt takes the registry base URL as a parameter so tests can point
// it at an httptest server instead of the real npm registry.
func (p *DefaultPackageFetcher) resolveNpmAt(ctx context.Context, base, name, version string) (string, error) {
	path := fmt.Sprintf("%s/%s", base, name)

	var meta npmResponse
	if err := getJSON(ctx, p.client(), path, &meta); err != nil {
		return "", fmt.Errorf("resolve npm package %q: %w", name, err)
	}

	v := version
	if v == "" {
		v = meta.DistTags.Latest
	}
	entry, ok := meta.Versions[v]
	if !ok || entry.Dist.Tarball == "" {
		return "", fmt.Errorf("no published version %q found for npm package %q", v, name)
	}
	return entry.Dist.Tarball, nil
}
