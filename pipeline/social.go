package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/harvest"
)

// StrategySocial names the social placeholder in reports.
const StrategySocial = "social-placeholder"

// SocialStrategy produces a labeled placeholder for social posts. Their
// platforms do not allow unauthenticated retrieval, so nothing is fetched
// and the result is advisory text, never the post's own content.
type SocialStrategy struct{}

// Run returns the placeholder for req.URL. It never fails for a valid
// request.
func (SocialStrategy) Run(_ context.Context, req harvest.ExtractionRequest) (*harvest.ExtractionResult, error) {
	rawURL := strings.TrimSpace(req.URL)
	platform := socialPlatform(req.ResolvedType())

	content := harvest.FormatSections([]harvest.Section{{
		Label: harvest.SourceSocialPlaceholder,
		Text: fmt.Sprintf("%s post: %s\n\n"+
			"The content of %s posts cannot be retrieved automatically because the platform "+
			"does not allow unauthenticated access. Open the link to review the post and add "+
			"your own notes.", platform, rawURL, platform),
	}})

	meta := &harvest.Metadata{
		Type:     harvest.MetadataSocial,
		Platform: platform,
		URL:      rawURL,
		Note:     "manual review recommended",
		Sources:  []string{harvest.SourceSocialPlaceholder},
	}

	res := harvest.NewSuccess(platform+" post", content, meta)
	res.Reports = []harvest.StrategyReport{
		harvest.Succeeded(StrategySocial, harvest.Fields{Content: content}).Report(),
	}
	return finalize(res), nil
}

func socialPlatform(t harvest.ContentType) string {
	switch t {
	case harvest.ContentTikTok:
		return "TikTok"
	case harvest.ContentInstagram:
		return "Instagram"
	}
	return "Social media"
}
