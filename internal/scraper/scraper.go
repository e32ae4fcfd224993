package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"autofair/server/config"
	"autofair/server/internal/models"
)

// Scraper drives a headless browser over the marketplace search results and
// collects raw listing cards. It performs no cleaning; that is the
// extractor's job.
type Scraper struct {
	cfg    *config.Config
	logger *logrus.Logger
}

func New(cfg *config.Config, logger *logrus.Logger) *Scraper {
	if logger == nil {
		logger = logrus.New()
	}
	return &Scraper{cfg: cfg, logger: logger}
}

// BuildSearchURL composes the marketplace search URL for one result page.
func (s *Scraper) BuildSearchURL(make, model string, priceTo, page int) string {
	q := url.Values{}
	q.Set("brand", strings.ToLower(make))
	q.Set("model[]", strings.ToLower(model))
	if priceTo > 0 {
		q.Set("price_to", fmt.Sprintf("%d", priceTo))
	}
	q.Set("page", fmt.Sprintf("%d", page))
	return s.cfg.Scraper.BaseURL + "?" + q.Encode()
}

// Scrape walks the requested number of result pages and returns every card it
// could read. A page that fails to load or parse is logged and skipped; the
// scrape only fails as a whole when no page yielded anything.
func (s *Scraper) Scrape(ctx context.Context, make, model string, priceTo, pages int) ([]models.RawListing, error) {
	if pages <= 0 || pages > s.cfg.Scraper.MaxPages {
		pages = s.cfg.Scraper.MaxPages
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if s.cfg.Scraper.ChromeBin != "" {
		opts = append(opts, chromedp.ExecPath(s.cfg.Scraper.ChromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	var all []models.RawListing
	failedPages := 0
	for page := 1; page <= pages; page++ {
		pageURL := s.BuildSearchURL(make, model, priceTo, page)
		s.logger.WithFields(logrus.Fields{"page": page, "url": pageURL}).Info("Loading results page")

		cards, err := s.scrapePage(browserCtx, pageURL)
		if err != nil {
			failedPages++
			s.logger.WithError(err).WithField("page", page).Error("Failed to scrape results page")
			continue
		}
		if len(cards) == 0 {
			s.logger.WithField("page", page).Info("Empty results page, stopping pagination")
			break
		}

		all = append(all, cards...)
		s.logger.WithFields(logrus.Fields{"page": page, "cards": len(cards), "total": len(all)}).
			Info("Results page scraped")

		if page < pages {
			time.Sleep(time.Duration(s.cfg.Scraper.RateLimitMs) * time.Millisecond)
		}
	}

	if len(all) == 0 && failedPages > 0 {
		return nil, fmt.Errorf("all %d result pages failed", failedPages)
	}
	return all, nil
}

// scrapePage loads one results page and pulls every advert card out of the
// DOM in a single evaluate round-trip.
func (s *Scraper) scrapePage(browserCtx context.Context, pageURL string) ([]models.RawListing, error) {
	ctx, cancel := context.WithTimeout(browserCtx, time.Duration(s.cfg.Scraper.PageTimeoutSec)*time.Second)
	defer cancel()

	var cards []models.RawListing
	err := chromedp.Run(ctx,
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible("a.ga-title", chromedp.ByQuery),
		chromedp.Evaluate(listingCardsJS, &cards),
	)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", pageURL, err)
	}
	return cards, nil
}

// listingCardsJS extracts the raw text of every advert card on a results
// page. Field shapes vary between adverts, so everything stays free text.
const listingCardsJS = `
(function() {
	var out = [];
	var cards = document.querySelectorAll('article.classified');
	for (var i = 0; i < cards.length; i++) {
		var card = cards[i];
		var item = {title: '', year: '', mileage: '', price: '', url: ''};

		var titleEl = card.querySelector('a.ga-title');
		if (titleEl) {
			item.title = titleEl.textContent.trim();
			item.url = titleEl.href || '';
		}

		var tops = card.querySelectorAll('div.top');
		for (var j = 0; j < tops.length; j++) {
			var txt = tops[j].textContent.trim();
			if (!item.year && /(19|20)\d{2}/.test(txt)) {
				item.year = txt.match(/(19|20)\d{2}/)[0];
			}
			if (!item.mileage && txt.indexOf('km') !== -1) {
				item.mileage = txt;
			}
		}

		var spans = card.querySelectorAll('span');
		for (var k = 0; k < spans.length; k++) {
			var stxt = spans[k].textContent.trim();
			if (stxt.indexOf('€') !== -1) {
				item.price = stxt;
				break;
			}
		}

		var bottoms = card.querySelectorAll('div.bottom');
		if (bottoms.length > 0) {
			item.engine = bottoms[0].textContent.trim();
		}
		var city = card.querySelector('div.city');
		if (city) {
			item.city = city.textContent.trim();
		}

		if (item.title) {
			out.push(item);
		}
	}
	return out;
})()
`
