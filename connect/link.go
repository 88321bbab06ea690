package connect

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const wcScheme = "wc:"

var ErrUnrecognizedLink = errors.New("unrecognized link")

// LinkKind tells what an incoming link asks the wallet to do.
type LinkKind byte

const (
	LinkKind_Unknown LinkKind = iota
	// LinkKind_Pairing carries a pairing uri with its symmetric key.
	LinkKind_Pairing
	// LinkKind_Focus only brings the wallet forward for a request already sent over a session.
	LinkKind_Focus
)

// ParseLink extracts the pairing uri from a raw wc: uri or from a universal link under one of prefixes.
func ParseLink(link string, prefixes []string) (LinkKind, string, error) {
	link = strings.TrimSpace(link)

	uri := ""
	switch {
	case strings.HasPrefix(link, wcScheme):
		uri = link
	default:
		for _, prefix := range prefixes {
			if prefix != "" && strings.HasPrefix(link, prefix) {
				u, err := url.Parse(link)
				if err != nil {
					return LinkKind_Unknown, "", fmt.Errorf("%w: %v", ErrUnrecognizedLink, err)
				}
				uri = u.Query().Get("uri")
				break
			}
		}
	}
	if !strings.HasPrefix(uri, wcScheme) {
		return LinkKind_Unknown, "", fmt.Errorf("%w: %s", ErrUnrecognizedLink, link)
	}

	query := ""
	if i := strings.IndexByte(uri, '?'); i >= 0 {
		query = uri[i+1:]
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return LinkKind_Unknown, "", fmt.Errorf("%w: %v", ErrUnrecognizedLink, err)
	}
	if values.Get("symKey") != "" {
		return LinkKind_Pairing, uri, nil
	}
	if values.Get("requestId") != "" || values.Get("sessionTopic") != "" {
		return LinkKind_Focus, uri, nil
	}
	return LinkKind_Unknown, "", fmt.Errorf("%w: %s", ErrUnrecognizedLink, link)
}

// HandleIncomingLink pairs on a pairing link and refreshes the pending requests on a focus link.
func (o *Orchestrator) HandleIncomingLink(ctx context.Context, link string) error {
	kind, uri, err := ParseLink(link, o.config.ConnectConfig.LinkPrefixes)
	if err != nil {
		o.log.Warnf("incoming link: %v", err)
		return err
	}

	switch kind {
	case LinkKind_Pairing:
		return o.Connect(ctx, uri)
	case LinkKind_Focus:
		o.Foreground(ctx)
	}
	return nil
}
