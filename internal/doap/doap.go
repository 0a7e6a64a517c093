// Package doap fetches the ASF project catalog and parses RDF/DOAP
// descriptors into project records.
package doap

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"projectlens/internal/fetch"
	"projectlens/internal/models"
	"projectlens/internal/urlutil"
)

// DefaultCatalogURL is the well-known ASF projects.xml location
const DefaultCatalogURL = "https://svn.apache.org/repos/asf/comdev/projects.apache.org/trunk/data/projects.xml"

const doapNS = "http://usefulinc.com/ns/doap#"

// ErrNoProject indicates a descriptor without a doap:Project element
var ErrNoProject = errors.New("doap: no Project element found")

// resourceRef captures an element carrying either an rdf:resource
// attribute or plain character data
type resourceRef struct {
	Resource string `xml:"http://www.w3.org/1999/02/22-rdf-syntax-ns# resource,attr"`
	Text     string `xml:",chardata"`
}

func (r resourceRef) value() string {
	if r.Resource != "" {
		return r.Resource
	}
	return strings.TrimSpace(r.Text)
}

type release struct {
	Version     *releaseBody `xml:"http://usefulinc.com/ns/doap# Version"`
	Revision    string       `xml:"http://usefulinc.com/ns/doap# revision"`
	Created     string       `xml:"http://usefulinc.com/ns/doap# created"`
	FileRelease resourceRef  `xml:"http://usefulinc.com/ns/doap# file-release"`
}

// releaseBody handles descriptors that nest release fields inside a
// doap:Version wrapper
type releaseBody struct {
	Revision    string      `xml:"http://usefulinc.com/ns/doap# revision"`
	Created     string      `xml:"http://usefulinc.com/ns/doap# created"`
	FileRelease resourceRef `xml:"http://usefulinc.com/ns/doap# file-release"`
}

func (r release) revision() string {
	if r.Version != nil && r.Version.Revision != "" {
		return r.Version.Revision
	}
	return r.Revision
}

func (r release) created() string {
	if r.Version != nil && r.Version.Created != "" {
		return r.Version.Created
	}
	return r.Created
}

func (r release) fileRelease() string {
	if r.Version != nil && r.Version.FileRelease.value() != "" {
		return r.Version.FileRelease.value()
	}
	return r.FileRelease.value()
}

type doapProject struct {
	Name         string       `xml:"http://usefulinc.com/ns/doap# name"`
	ShortDesc    string       `xml:"http://usefulinc.com/ns/doap# shortdesc"`
	Description  string       `xml:"http://usefulinc.com/ns/doap# description"`
	Category     *resourceRef `xml:"http://usefulinc.com/ns/doap# category"`
	Language     string       `xml:"http://usefulinc.com/ns/doap# programming-language"`
	Homepage     *resourceRef `xml:"http://usefulinc.com/ns/doap# homepage"`
	DownloadPage *resourceRef `xml:"http://usefulinc.com/ns/doap# download-page"`
	BugDatabase  *resourceRef `xml:"http://usefulinc.com/ns/doap# bug-database"`
	MailingList  *resourceRef `xml:"http://usefulinc.com/ns/doap# mailing-list"`
	Releases     []release    `xml:"http://usefulinc.com/ns/doap# release"`
}

// Parse parses one RDF/DOAP descriptor. Missing optional elements fall
// back to documented defaults; a descriptor without a doap:Project
// element yields ErrNoProject.
func Parse(raw []byte) (*models.Project, error) {
	dp, err := findProject(raw)
	if err != nil {
		return nil, err
	}
	if dp == nil {
		return nil, ErrNoProject
	}

	p := &models.Project{
		Name:                defaultString(strings.TrimSpace(dp.Name), "Unknown"),
		ShortDesc:           strings.TrimSpace(dp.ShortDesc),
		Description:         strings.TrimSpace(dp.Description),
		Category:            "Unknown",
		ProgrammingLanguage: defaultString(strings.TrimSpace(dp.Language), "Unknown"),
	}

	if dp.Category != nil {
		// Category URIs look like .../category/big-data; keep the tail
		res := dp.Category.Resource
		p.Category = res[strings.LastIndex(res, "/")+1:]
	}

	if dp.Homepage != nil {
		p.Homepage = urlutil.Normalize(dp.Homepage.value())
	}
	if dp.DownloadPage != nil {
		p.DownloadPage = urlutil.Normalize(dp.DownloadPage.value())
	}
	if dp.BugDatabase != nil {
		p.BugDatabase = urlutil.Normalize(dp.BugDatabase.value())
	}
	if dp.MailingList != nil {
		p.MailingList = urlutil.Normalize(dp.MailingList.value())
	}

	p.LatestRelease = latestRelease(dp.Releases)

	return p, nil
}

// findProject scans the document for the first doap:Project element at
// any depth and decodes it. Returns nil when none exists.
func findProject(raw []byte) (*doapProject, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to parse RDF: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Space == doapNS && start.Name.Local == "Project" {
			var dp doapProject
			if err := dec.DecodeElement(&dp, &start); err != nil {
				return nil, fmt.Errorf("failed to decode Project element: %w", err)
			}
			return &dp, nil
		}
	}
}

// latestRelease picks the release with the lexicographically maximal
// revision string. This mirrors the catalog's historical behavior and
// is deliberately not semantic-version aware ("2.9" beats "2.10").
func latestRelease(releases []release) *models.Release {
	if len(releases) == 0 {
		return nil
	}

	best := releases[0]
	for _, r := range releases[1:] {
		if r.revision() > best.revision() {
			best = r
		}
	}

	return &models.Release{
		Version:     defaultString(strings.TrimSpace(best.revision()), "Unknown"),
		Date:        defaultString(strings.TrimSpace(best.created()), "Unknown"),
		DownloadURL: urlutil.Normalize(best.fileRelease()),
	}
}

// FetchCatalog retrieves the catalog document and extracts every
// location element's text value, normalized.
func FetchCatalog(ctx context.Context, client *fetch.Client, catalogURL string) ([]string, error) {
	if catalogURL == "" {
		catalogURL = DefaultCatalogURL
	}

	raw, err := client.Get(ctx, urlutil.Normalize(catalogURL))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}

	return ParseCatalog(raw)
}

// ParseCatalog extracts location URIs from the catalog XML at any depth
func ParseCatalog(raw []byte) ([]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	var locations []string
	var inLocation bool
	var buf strings.Builder

	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to parse catalog: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "location" {
				inLocation = true
				buf.Reset()
			}
		case xml.CharData:
			if inLocation {
				buf.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local == "location" {
				inLocation = false
				if loc := strings.TrimSpace(buf.String()); loc != "" {
					locations = append(locations, urlutil.Normalize(loc))
				}
			}
		}
	}

	return locations, nil
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
