package garden

import (
	"context"
	"html/template"
	"io"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/canrau/garden/content"
	"github.com/canrau/garden/ogimage"
)

// PreviewPage is the data behind a post's image preview.
type PreviewPage struct {
	Title        string
	Description  string
	Lang         string
	SiteName     string
	CanonicalURL string
	ImageURL     string
	SmallURL     string
	Width        int
	Height       int
	Revision     string
	Status       string
}

// NewPreviewPage collects the preview data for post.
func NewPreviewPage(cfg SiteConfig, post content.Post) PreviewPage {
	v := ogimage.Variants[ogimage.SizeDefault]
	return PreviewPage{
		Title:        post.Title,
		Description:  post.Description,
		Lang:         post.Lang,
		SiteName:     cfg.Domain,
		CanonicalURL: BuildURL(cfg.URL, post.Lang, post.Slug),
		ImageURL:     OGImageURL(cfg, post, ogimage.SizeDefault),
		SmallURL:     OGImageURL(cfg, post, ogimage.SizeSmall),
		Width:        v.Width,
		Height:       v.Height,
		Revision:     ogimage.RevisionToken(post.Title),
		Status:       post.Status,
	}
}

var previewTmpl = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} · {{.SiteName}}</title>
<link rel="canonical" href="{{.CanonicalURL}}">
<meta property="og:type" content="article">
<meta property="og:site_name" content="{{.SiteName}}">
<meta property="og:title" content="{{.Title}}">
{{- with .Description}}
<meta property="og:description" content="{{.}}">
<meta name="description" content="{{.}}">
{{- end}}
<meta property="og:url" content="{{.CanonicalURL}}">
<meta property="og:image" content="{{.ImageURL}}">
<meta property="og:image:type" content="image/png">
<meta property="og:image:width" content="{{.Width}}">
<meta property="og:image:height" content="{{.Height}}">
<meta name="twitter:card" content="summary_large_image">
<meta name="twitter:title" content="{{.Title}}">
<meta name="twitter:image" content="{{.ImageURL}}">
<style>body{background:#27272a;color:#fff;font-family:monospace;max-width:1240px;margin:2rem auto;padding:0 1rem}img{max-width:100%;height:auto;display:block;margin:1rem 0}</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>revision <code>{{.Revision}}</code>{{with .Status}} · {{.}}{{end}}</p>
<h2>default</h2>
<a href="{{.ImageURL}}"><img src="{{.ImageURL}}" width="{{.Width}}" height="{{.Height}}" alt="{{.Title}}"></a>
<h2>small</h2>
<a href="{{.SmallURL}}"><img src="{{.SmallURL}}" alt="{{.Title}}"></a>
</body>
</html>
`))

// Preview renders the preview page.
func Preview(p PreviewPage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return previewTmpl.Execute(w, p)
	})
}

func renderPage(c echo.Context, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}
