package twogis

// Selectors of the 2GIS search results page. The class names are generated
// by the site's build and change without notice.
const (
	// Results list
	cardSelector   = `div._1kf6gff`
	nameSelector   = `span._lvwrwt > span`
	ratingSelector = `div._y10azs`

	// XPath, used with chromedp.BySearch
	resultCountXPath  = `(//span[@class='_1xhlznaa'])[1]`
	scrollAnchorXPath = `(//div[@class='_15gu4wr'])[last()]`
	nextPageXPath     = `//div[@class='_5ocwns']//div[2]`

	cardsPerPage = 12

	// extra pages tried beyond the estimate, the count shown is approximate
	extraPages = 3
)
