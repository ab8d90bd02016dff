package garden

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/canrau/garden/ogimage"
)

// RouteImageSitemap lists every published post with its current image.
const RouteImageSitemap = "/sitemap-ogimage.xml"

type sitemapURLSet struct {
	XMLName    xml.Name     `xml:"urlset"`
	XMLNS      string       `xml:"xmlns,attr"`
	XMLNSImage string       `xml:"xmlns:image,attr"`
	URLs       []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string         `xml:"loc"`
	LastMod string         `xml:"lastmod,omitempty"`
	Images  []sitemapImage `xml:"image:image"`
}

type sitemapImage struct {
	Loc   string `xml:"image:loc"`
	Title string `xml:"image:title,omitempty"`
}

func (a *App) handleImageSitemap(c echo.Context) error {
	var urls []sitemapURL
	for _, lang := range ogimage.SupportedLangs {
		posts, err := a.Loader.List(string(lang))
		if err != nil {
			return err
		}
		for _, p := range posts {
			if !p.IsPublished() {
				continue
			}
			u := sitemapURL{
				Loc:    BuildURL(a.Config.URL, p.Lang, p.Slug),
				Images: []sitemapImage{{Loc: OGImageURL(a.Config, p, ogimage.SizeDefault), Title: p.Title}},
			}
			if t := p.LastModified(); !t.IsZero() {
				u.LastMod = t.Format("2006-01-02")
			}
			urls = append(urls, u)
		}
	}
	sitemap := sitemapURLSet{
		XMLNS:      "http://www.sitemaps.org/schemas/sitemap/0.9",
		XMLNSImage: "http://www.google.com/schemas/sitemap-image/1.1",
		URLs:       urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
