package transform

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/skolio/kabinet/pkg/htmlutil"
	"github.com/skolio/kabinet/pkg/models"
)

// methodologyHeadingDemotion keeps imported methodology headings below the
// page's own h1/h2 structure.
const methodologyHeadingDemotion = 2

var imgSrcRE = regexp.MustCompile(`(<img[^>]+src=")([^"]+)(")`)

// buildKnowledgeHTML concatenates the lesson sections in their fixed order.
// Omitted source fields produce no markup at all, not empty headings.
func (t *Transformer) buildKnowledgeHTML(ctx context.Context, k *models.LegacyKnowledge, folder string, opts Options) string {
	var b strings.Builder

	if k.Description != "" {
		b.WriteString(`<section class="intro">`)
		b.WriteString(t.rehostInlineImages(ctx, k.Description, folder, opts))
		b.WriteString(`</section>`)
	}

	if block := t.buildAnimationHTML(ctx, k, folder, opts); block != "" {
		b.WriteString(block)
	}

	if k.Questions != "" {
		b.WriteString(`<section class="questions"><h2>Otázky k diskusi</h2>`)
		b.WriteString(k.Questions)
		b.WriteString(`</section>`)
	}

	if k.Conclusion != "" {
		b.WriteString(`<div class="callout callout-summary"><h2>Shrnutí</h2>`)
		b.WriteString(k.Conclusion)
		b.WriteString(`</div>`)
	}

	if k.Answers != "" {
		b.WriteString(`<section class="answers"><h2>Odpovědi</h2>`)
		b.WriteString(k.Answers)
		b.WriteString(`</section>`)
	}

	if k.MethodicalInspiration != "" {
		b.WriteString(`<div class="callout callout-methodology"><h2>Metodická inspirace</h2>`)
		b.WriteString(htmlutil.DemoteHeadings(k.MethodicalInspiration, methodologyHeadingDemotion))
		b.WriteString(`</div>`)
	}

	if materials := t.buildMaterialsHTML(ctx, k, folder, opts); materials != "" {
		b.WriteString(materials)
	}

	return b.String()
}

// rehostInlineImages substitutes every inline <img> source with its rehosted
// URL. A failed rehost keeps the original source.
func (t *Transformer) rehostInlineImages(ctx context.Context, html, folder string, opts Options) string {
	if !opts.DownloadFiles {
		return html
	}

	return imgSrcRE.ReplaceAllStringFunc(html, func(tag string) string {
		m := imgSrcRE.FindStringSubmatch(tag)
		rehosted, ok := t.rehoster.Rehost(ctx, opts.Token, m[2], folder)
		if !ok {
			return tag
		}
		t.recordAsset(models.AssetKindImage, "", rehosted, m[2], opts.Category, 0)
		return m[1] + rehosted + m[3]
	})
}

func (t *Transformer) buildAnimationHTML(ctx context.Context, k *models.LegacyKnowledge, folder string, opts Options) string {
	anim := k.Animation
	if anim == nil {
		return ""
	}
	if len(anim.Items) == 0 && anim.IntroAnimationURL == "" && anim.AudioURL == "" {
		return ""
	}

	var b strings.Builder
	b.WriteString(`<section class="animation">`)

	if anim.IntroAnimationURL != "" {
		u := t.maybeRehost(ctx, anim.IntroAnimationURL, folder, opts)
		if u != anim.IntroAnimationURL {
			t.recordAsset(models.AssetKindAnimation, k.Name, u, anim.IntroAnimationURL, opts.Category, k.ID)
		}
		b.WriteString(fmt.Sprintf(`<div class="lottie lottie-intro" data-src="%s"></div>`, u))
	}

	for _, step := range anim.Items {
		if step.URL == "" {
			continue
		}
		u := t.maybeRehost(ctx, step.URL, folder, opts)
		if u != step.URL {
			t.recordAsset(models.AssetKindAnimation, step.Name, u, step.URL, opts.Category, k.ID)
		}
		b.WriteString(fmt.Sprintf(`<div class="lottie lottie-step" data-src="%s"></div>`, u))
	}

	if anim.AudioURL != "" {
		u := t.maybeRehost(ctx, anim.AudioURL, folder, opts)
		if u != anim.AudioURL {
			t.recordAsset(models.AssetKindAudio, k.Name, u, anim.AudioURL, opts.Category, k.ID)
		}
		b.WriteString(fmt.Sprintf(`<audio controls src="%s"></audio>`, u))
	}

	b.WriteString(`</section>`)
	return b.String()
}

func (t *Transformer) buildMaterialsHTML(ctx context.Context, k *models.LegacyKnowledge, folder string, opts Options) string {
	type material struct {
		label string
		url   string
	}

	materials := []material{
		{"Pracovní list (PDF)", k.PDFURL},
		{"Řešení (PDF)", k.SolutionURL},
		{"Metodická inspirace (PDF)", k.MethodicalInspirationPDF},
	}

	var b strings.Builder
	for _, m := range materials {
		if m.url == "" {
			continue
		}
		u := t.maybeRehost(ctx, m.url, folder, opts)
		b.WriteString(fmt.Sprintf(`<li><a href="%s" download>%s</a></li>`, u, m.label))
	}
	if b.Len() == 0 {
		return ""
	}

	return `<section class="materials"><h2>Materiály ke stažení</h2><ul>` + b.String() + `</ul></section>`
}

// buildWorksheetViewerHTML embeds a worksheet body (when present) ahead of
// the inline PDF viewer and its download buttons.
func buildWorksheetViewerHTML(body, pdfURL, solutionURL string) string {
	var b strings.Builder

	if body != "" {
		b.WriteString(`<section class="worksheet-body">`)
		b.WriteString(body)
		b.WriteString(`</section>`)
	}

	if pdfURL != "" {
		b.WriteString(fmt.Sprintf(`<div class="pdf-viewer" data-src="%s"></div>`, pdfURL))
		b.WriteString(fmt.Sprintf(`<a class="button" href="%s" download>Stáhnout pracovní list</a>`, pdfURL))
	}
	if solutionURL != "" {
		b.WriteString(fmt.Sprintf(`<a class="button button-secondary" href="%s" download>Stáhnout řešení</a>`, solutionURL))
	}

	return b.String()
}
