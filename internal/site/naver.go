package site

import (
	"regexp"
	"slices"

	"github.com/law-makers/goodscrawl/internal/extract"
	"github.com/law-makers/goodscrawl/internal/normalize"
)

var (
	naverTriggers = []string{
		"a[aria-haspopup='listbox']",
		"div[role='combobox']",
		"a[role='button']._3-9gA-gL-k",
	}
	naverListbox = "ul[role='listbox'] li, ._2-aCU009jQ, ul._3k4406ksnE li"
)

// Naver returns the strategy set for naver smart store and brand store pages
func Naver() *extract.StrategySet {
	set := &extract.StrategySet{
		Name:  "naver",
		Hosts: []string{"naver.com", "smartstore"},

		ReadyGlobals:   []string{"window.__PRELOADED_STATE__"},
		ReadySelectors: []string{"h3._22kNQuPmbq", "._1LY7DqCnwR", "h3.cp-card__name"},

		GoodsID: regexp.MustCompile(`/products/(\d+)`),

		Structured: []extract.StructuredSource{
			{Name: "preloaded-state", Global: "window.__PRELOADED_STATE__", Parse: parseNaverState},
			{Name: "json-ld", Selector: `script[type="application/ld+json"]`, Parse: extract.ParseJSONLD},
		},

		TitleSelectors: []string{"h3._22kNQuPmbq", "._22kNQuPmbq", "h3.cp-card__name", ".ABroB09L7j", "h3"},
		RelatedMarkers: append(slices.Clone(normalize.RelatedMarkers), "다른 고객이 함께 구매한 상품"),
		PriceSelectors: []string{
			"._1LY7DqCnwR", "span._1LY7DqCnwR",
			".product_price .price", ".lowest-price",
			"span._22kNQuPmbq", ".price_num", "strong.price",
			"span.cwq0ZTei2a", ".lowest .price",
		},
		PriceMetaKeys:  []string{"product:sale_price:amount", "product:price:amount"},
		SoldOutMarkers: []string{"품절"},

		Notice: &extract.NoticePanel{
			Container:   "table",
			Toggle:      "button[aria-controls*='INFO'], a[href='#INFO']",
			Rows:        "tr",
			SizeLabels:  []string{"치수", "사이즈"},
			ColorLabels: []string{"색상", "컬러"},
		},
	}

	for _, labels := range [][]string{{"사이즈", "size", "치수"}, nil} {
		for _, t := range naverTriggers {
			set.SizeDropdowns = append(set.SizeDropdowns, extract.Dropdown{Trigger: t, Options: naverListbox, Labels: labels})
		}
	}
	for _, t := range naverTriggers {
		set.ColorDropdowns = append(set.ColorDropdowns, extract.Dropdown{Trigger: t, Options: naverListbox, Labels: []string{"색상", "컬러", "color"}})
	}
	return set
}

var naverOptions = extract.OptionReader{
	NameKeys: []string{"name"},
	SoldOut:  naverOptionSoldOut,
}

var naverCombos = extract.OptionReader{
	NameKeys: []string{"optionName1", "optionName2", "optionName3"},
	Join:     true,
	SoldOut:  naverOptionSoldOut,
}

// naverOptionSoldOut treats a missing stock quantity as in stock
func naverOptionSoldOut(opt map[string]interface{}) bool {
	if q, ok := opt["stockQuantity"]; ok && normalize.ToInt(q) <= 0 {
		return true
	}
	return yes(opt["soldOut"])
}

// parseNaverState reads the product out of __PRELOADED_STATE__
func parseNaverState(data interface{}) (*extract.Structured, error) {
	product := normalize.DigMap(data, "product", "A")
	if product == nil {
		product = normalize.DigMap(data, "simpleProductForDetailPage", "A")
	}
	if product == nil {
		return nil, extract.NewError(extract.CodeStructuredDataShapeMismatch, "__PRELOADED_STATE__ has no product", nil)
	}

	st := &extract.Structured{
		Title: normalize.DigString(product, "name"),
		Price: naverPrice(product),
		Image: normalize.EnsureHTTPS(naverImage(product)),
	}
	if status := normalize.DigString(product, "productStatusType"); status != "" {
		sold := status == "OUTOFSTOCK" || status == "SUSPENSION"
		st.SoldOut = &sold
	}

	for _, src := range []struct {
		path   []string
		reader extract.OptionReader
	}{
		{[]string{"option", "simpleOptions"}, naverOptions},
		{[]string{"simpleOptions"}, naverOptions},
		{[]string{"option", "optionCombos"}, naverCombos},
		{[]string{"optionCombinations"}, naverCombos},
	} {
		raw := normalize.Dig(product, src.path...)
		if raw == nil {
			continue
		}
		st.HasOptions = true
		if list, ok := raw.([]interface{}); ok && len(list) > 0 {
			st.Sizes = src.reader.Read(list)
			break
		}
	}
	return st, nil
}

func naverPrice(product map[string]interface{}) int {
	for _, path := range [][]string{
		{"discountedPrice"},
		{"benefitsView", "discountedSalePrice"},
		{"salePrice"},
		{"price"},
	} {
		if p := normalize.ToInt(normalize.Dig(product, path...)); p > 0 {
			return p
		}
	}
	return 0
}

func naverImage(product map[string]interface{}) string {
	if first, ok := normalize.FirstOf(product["productImages"]).(map[string]interface{}); ok {
		if u := normalize.DigString(first, "url"); u != "" {
			return u
		}
	}
	return normalize.DigString(product, "representImage", "url")
}
