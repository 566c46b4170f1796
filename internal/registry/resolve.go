package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ResolveLatestVersion returns the value of the template's "latest" dist-tag.
func (c *Client) ResolveLatestVersion(ctx context.Context, templateID string) (string, error) {
	endpoint := fmt.Sprintf("%s/-/package/%s/dist-tags", c.baseURL, escapeName(templateID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &NetworkError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &NotFoundError{Template: templateID, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{URL: endpoint, Err: fmt.Errorf("reading response body: %w", err)}
	}

	var tags map[string]string
	if err := json.Unmarshal(body, &tags); err != nil {
		return "", &NotFoundError{Template: templateID, Reason: fmt.Sprintf("parsing dist-tags: %v", err)}
	}

	latest, ok := tags["latest"]
	if !ok || latest == "" {
		return "", &NotFoundError{Template: templateID, Reason: "no latest dist-tag"}
	}
	if _, err := parseSemver(latest); err != nil {
		return "", &NotFoundError{Template: templateID, Reason: fmt.Sprintf("latest tag %q is not a semantic version", latest)}
	}
	return latest, nil
}

// ArchiveURL returns the deterministic tarball URL for a template version.
// Scoped packages keep their scope in the path but not in the file name:
// @scope/pkg@1.0.0 lives at {base}/@scope/pkg/-/pkg-1.0.0.tgz.
func (c *Client) ArchiveURL(templateID, version string) string {
	base := templateID
	if i := strings.LastIndex(templateID, "/"); i >= 0 {
		base = templateID[i+1:]
	}
	return fmt.Sprintf("%s/%s/-/%s-%s.tgz", c.baseURL, templateID, base, version)
}

// OpenArchiveStream opens the template tarball and returns the response body
// positioned at the start of the archive. The caller must close it.
//
// A non-200 response is reported as a StreamOpenError here rather than
// surfacing later as a gzip error during extraction.
func (c *Client) OpenArchiveStream(ctx context.Context, templateID, version string) (io.ReadCloser, error) {
	archiveURL := c.ArchiveURL(templateID, version)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveURL, nil)
	if err != nil {
		return nil, &StreamOpenError{URL: archiveURL, Err: err}
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &StreamOpenError{URL: archiveURL, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &StreamOpenError{URL: archiveURL, Status: resp.StatusCode}
	}
	return resp.Body, nil
}

// escapeName encodes the scope separator of a scoped package name so the
// dist-tags endpoint receives a single path segment.
func escapeName(name string) string {
	if strings.HasPrefix(name, "@") {
		return "@" + url.PathEscape(name[1:])
	}
	return url.PathEscape(name)
}
