package garden

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/canrau/garden/content"
	"github.com/canrau/garden/ogimage"
)

// RouteOGImage is the image route. :version holds "v<n>".
const RouteOGImage = "/assets/:lang/ogimage/:version/:size/:file"

// RouteOGImageQuery takes the same fields as query parameters:
// ?slug=&size=&v=&rev=&lang=.
const RouteOGImageQuery = "/assets/images/og.png"

func (a *App) setupRoutes() {
	e := a.Echo
	e.GET(RouteOGImageQuery, a.handleOGImageQuery)
	e.GET(RouteOGImage, a.handleOGImage)
	e.GET("/ogimage/:lang/:slug/", a.handlePreview)
	e.GET(RouteImageSitemap, a.handleImageSitemap)
	e.GET("/healthz", a.handleHealth)
}

// imageRef is an image as requested, before validation.
type imageRef struct {
	Slug    string
	Rev     string
	Version string
	Lang    ogimage.Lang
	Size    ogimage.Size
}

func (a *App) handleOGImage(c echo.Context) error {
	slug, rev, ok := parseImageFile(c.Param("file"))
	if !ok {
		return echo.ErrNotFound
	}
	ref := imageRef{
		Slug:    slug,
		Rev:     rev,
		Version: c.Param("version"),
		Lang:    ogimage.Lang(c.Param("lang")),
		Size:    ogimage.Size(c.Param("size")),
	}
	return a.serveImage(c, ref, func(r imageRef) string {
		return OGImagePath(r.Lang, ogimage.Version, r.Size, r.Slug, r.Rev)
	})
}

func (a *App) handleOGImageQuery(c echo.Context) error {
	ref := imageRef{
		Slug:    strings.TrimSpace(c.QueryParam("slug")),
		Rev:     c.QueryParam("rev"),
		Version: c.QueryParam("v"),
		Lang:    ogimage.Lang(c.QueryParam("lang")),
		Size:    ogimage.Size(c.QueryParam("size")),
	}
	u := *c.Request().URL
	return a.serveImage(c, ref, func(r imageRef) string {
		q := u.Query()
		q.Set("slug", r.Slug)
		q.Set("size", string(r.Size))
		q.Set("v", strconv.Itoa(ogimage.Version))
		q.Set("rev", r.Rev)
		q.Set("lang", string(r.Lang))
		return u.Path + "?" + q.Encode()
	})
}

// serveImage validates ref in order (slug, version, size, lang, post,
// revision), redirecting to urlFor of the corrected ref, and serves the
// image.
func (a *App) serveImage(c echo.Context, ref imageRef, urlFor func(imageRef) string) error {
	if ref.Slug == "" {
		return echo.ErrNotFound
	}
	if v, ok := parseVersion(ref.Version); !ok || v != ogimage.Version {
		return redirect(c, urlFor(ref))
	}
	if _, ok := ogimage.ParseSize(string(ref.Size)); !ok {
		ref.Size = ogimage.SizeDefault
		return redirect(c, urlFor(ref))
	}
	if _, ok := ogimage.ParseLang(string(ref.Lang)); !ok {
		ref.Lang = ogimage.DefaultLang
		return redirect(c, urlFor(ref))
	}
	slug, lang, size := ref.Slug, ref.Lang, ref.Size

	post, err := a.Posts.Load(slug, string(lang))
	if errors.Is(err, content.ErrNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	if current := ogimage.RevisionToken(post.Title); !strings.EqualFold(ref.Rev, current) {
		ref.Rev = current
		return redirect(c, urlFor(ref))
	}

	req := a.requestFor(post, lang, size)
	data, hit := a.Artifacts.Lookup(IDFor(req))
	if !hit {
		if !a.limiter.Allow(c.RealIP()) {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many renders, retry later")
		}
		art, _, err := a.Artifacts.Get(c.Request().Context(), req)
		if err != nil {
			a.Logger.Error("ogimage failed",
				zap.String("slug", slug),
				zap.String("lang", string(lang)),
				zap.String("size", string(size)),
				zap.Error(err),
			)
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"lang":  string(lang),
				"error": "Error creating the image",
			})
		}
		data = art.Data
	}

	disposition := "attachment"
	if a.Config.Development {
		disposition = "inline"
	}
	h := c.Response().Header()
	h.Set("Access-Control-Expose-Headers", "Content-Disposition")
	h.Set("Content-Disposition", disposition+`; filename="`+DownloadName(a.Config.Domain, slug, lang, size)+`"`)
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Content-Length", strconv.Itoa(len(data)))
	return c.Blob(http.StatusOK, "image/png", data)
}

// redirect sends a temporary redirect that caches must not keep.
func redirect(c echo.Context, to string) error {
	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.Redirect(http.StatusFound, to)
}

func (a *App) handlePreview(c echo.Context) error {
	slug := c.Param("slug")
	lang, ok := ogimage.ParseLang(c.Param("lang"))
	if !ok {
		return redirect(c, PreviewPath(ogimage.DefaultLang, slug))
	}
	post, err := a.Posts.Load(slug, string(lang))
	if errors.Is(err, content.ErrNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	return renderPage(c, Preview(NewPreviewPage(a.Config, post)))
}

func (a *App) handleHealth(c echo.Context) error {
	n, err := a.Store.CountArtifacts()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":    "ok",
		"version":   ogimage.Version,
		"artifacts": n,
	})
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error("server error", zap.String("uri", c.Request().RequestURI), zap.Error(err))
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
