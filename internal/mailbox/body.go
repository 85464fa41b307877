package mailbox

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"
	"time"
)

// ErrNoBody means a message carried no decodable text part at all.
var ErrNoBody = errors.New("message has no decodable body part")

const maxBodyBytes = 6 << 20

// HTMLBody parses raw RFC822 bytes and returns the message's primary
// rendered part: the HTML part when one exists, otherwise the plain text
// part. A message with neither is a hard failure for that message.
func HTMLBody(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", ErrNoBody
	}

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parse rfc822: %w", err)
	}

	bodyRaw, _ := io.ReadAll(io.LimitReader(msg.Body, maxBodyBytes))

	plain, htmlPart := extractMIMETextParts(msg.Header, bodyRaw)
	if htmlPart != "" {
		return htmlPart, nil
	}
	if plain != "" {
		return plain, nil
	}
	return "", ErrNoBody
}

// HeaderDate parses the message's Date header with net/mail's tolerant
// parser rather than assuming a fixed-width timezone suffix.
func HeaderDate(raw []byte) (time.Time, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse rfc822: %w", err)
	}
	ds := msg.Header.Get("Date")
	if ds == "" {
		return time.Time{}, errors.New("no Date header")
	}
	t, err := mail.ParseDate(ds)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse Date header %q: %w", ds, err)
	}
	return t, nil
}

func extractMIMETextParts(h mail.Header, body []byte) (plain, htmlPart string) {
	ct := h.Get("Content-Type")
	cte := strings.ToLower(strings.TrimSpace(h.Get("Content-Transfer-Encoding")))

	mediaType, params, err := mime.ParseMediaType(ct)
	if err != nil {
		s := decodeTransferEncoding(body, cte)
		return string(s), ""
	}
	mediaType = strings.ToLower(mediaType)

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			s := decodeTransferEncoding(body, cte)
			return string(s), ""
		}
		mr := multipart.NewReader(bytes.NewReader(body), boundary)

		var bestPlain, bestHTML string
		for {
			p, err := mr.NextPart()
			if err != nil {
				break
			}
			partCTE := strings.ToLower(strings.TrimSpace(p.Header.Get("Content-Transfer-Encoding")))
			partCT := p.Header.Get("Content-Type")
			pMedia, _, _ := mime.ParseMediaType(partCT)
			pMedia = strings.ToLower(pMedia)

			b, _ := io.ReadAll(io.LimitReader(p, maxBodyBytes))
			b = decodeTransferEncoding(b, partCTE)

			if strings.HasPrefix(pMedia, "multipart/") {
				pl, ht := extractMIMETextParts(mail.Header(p.Header), b)
				if len(pl) > len(bestPlain) {
					bestPlain = pl
				}
				if len(ht) > len(bestHTML) {
					bestHTML = ht
				}
				continue
			}

			switch {
			case strings.HasPrefix(pMedia, "text/plain"):
				if len(b) > len(bestPlain) {
					bestPlain = string(b)
				}
			case strings.HasPrefix(pMedia, "text/html"):
				if len(b) > len(bestHTML) {
					bestHTML = string(b)
				}
			}
		}
		return bestPlain, bestHTML
	}

	s := decodeTransferEncoding(body, cte)
	if strings.HasPrefix(mediaType, "text/html") {
		return "", string(s)
	}
	return string(s), ""
}

func decodeTransferEncoding(b []byte, cte string) []byte {
	switch cte {
	case "base64":
		dec := base64.NewDecoder(base64.StdEncoding, bytes.NewReader(b))
		out, _ := io.ReadAll(io.LimitReader(dec, maxBodyBytes))
		return out
	case "quoted-printable":
		dec := quotedprintable.NewReader(bytes.NewReader(b))
		out, _ := io.ReadAll(io.LimitReader(dec, maxBodyBytes))
		return out
	default:
		return b
	}
}

// DecodeSubject decodes RFC2047-encoded words in a Subject header.
func DecodeSubject(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	dec := new(mime.WordDecoder)
	out, err := dec.DecodeHeader(s)
	if err != nil {
		return s
	}
	return out
}
