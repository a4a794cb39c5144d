// Package drive uploads files to a OneDrive/SharePoint drive and creates
// share links for them.
package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"

	"github.com/tidwall/gjson"

	appErrors "github.com/noah-isme/card-order-api/pkg/errors"
	"github.com/noah-isme/card-order-api/pkg/graph"
)

// Visibility scopes a share link.
type Visibility string

const (
	// VisibilityOrganization limits the link to members of the tenant.
	VisibilityOrganization Visibility = "organization"
	// VisibilityAnonymous lets anyone holding the link view the file.
	VisibilityAnonymous Visibility = "anonymous"
)

// Requester is the subset of the Graph client used by the relay.
type Requester interface {
	DoJSON(ctx context.Context, op, method, path string, payload interface{}) (gjson.Result, error)
	DoRaw(ctx context.Context, op, method, path string, body io.Reader, contentType string) (gjson.Result, error)
}

// Item describes an uploaded drive item.
type Item struct {
	ID     string
	Name   string
	WebURL string
	Size   int64
}

// Relay stores files on one drive.
type Relay struct {
	client  Requester
	driveID string
}

// NewRelay constructs a Relay for driveID.
func NewRelay(client Requester, driveID string) (*Relay, error) {
	if client == nil {
		return nil, fmt.Errorf("graph client is required")
	}
	if driveID == "" {
		return nil, fmt.Errorf("drive id is required")
	}
	return &Relay{client: client, driveID: driveID}, nil
}

// Upload writes content to destination (a drive path such as
// "/명함초안/LN-2025-1001_1700000000000_draft.pdf") using a simple upload.
// Existing files at the same path are replaced.
func (r *Relay) Upload(ctx context.Context, destination string, content []byte, contentType string) (*Item, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	p := "/drives/" + url.PathEscape(r.driveID) + "/root:" + graph.EscapePath(destination) + ":/content"
	res, err := r.client.DoRaw(ctx, "drive.upload", http.MethodPut, p, bytes.NewReader(content), contentType)
	if err != nil {
		return nil, appErrors.Remote(fmt.Errorf("upload %s: %w", path.Base(destination), err), "파일 업로드 중 오류가 발생했습니다.")
	}
	item := &Item{
		ID:     res.Get("id").String(),
		Name:   res.Get("name").String(),
		WebURL: res.Get("webUrl").String(),
		Size:   res.Get("size").Int(),
	}
	if item.ID == "" {
		return nil, appErrors.Remote(fmt.Errorf("upload %s: response without item id", path.Base(destination)), "파일 업로드 중 오류가 발생했습니다.")
	}
	return item, nil
}

// CreateShareLink requests a view link for itemID.
func (r *Relay) CreateShareLink(ctx context.Context, itemID string, visibility Visibility) (string, error) {
	if visibility == "" {
		visibility = VisibilityOrganization
	}
	p := "/drives/" + url.PathEscape(r.driveID) + "/items/" + url.PathEscape(itemID) + "/createLink"
	payload := map[string]string{"type": "view", "scope": string(visibility)}
	res, err := r.client.DoJSON(ctx, "drive.share", http.MethodPost, p, payload)
	if err != nil {
		return "", appErrors.Remote(fmt.Errorf("create share link: %w", err), "")
	}
	link := res.Get("link.webUrl").String()
	if link == "" {
		return "", appErrors.Remote(fmt.Errorf("create share link: response without link"), "")
	}
	return link, nil
}
