package site

import (
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/law-makers/goodscrawl/internal/extract"
	"github.com/law-makers/goodscrawl/internal/normalize"
)

const musinsaImageHost = "https://image.msscdn.net"

// Musinsa returns the strategy set for musinsa.com product pages
func Musinsa() *extract.StrategySet {
	return &extract.StrategySet{
		Name:  "musinsa",
		Hosts: []string{"musinsa.com"},

		ReadyGlobals: []string{
			"window.__NEXT_DATA__",
			"window.__MSS__ && window.__MSS__.product",
		},
		ReadySelectors: []string{"h2.product_title", "[class*='GoodsName']", "#goods_price", ".product-price"},

		GoodsID: regexp.MustCompile(`/(?:goods|products)/(\d+)`),

		Structured: []extract.StructuredSource{
			{Name: "next-data", Selector: "script#__NEXT_DATA__", Parse: parseMusinsaNextData},
			{
				Name:   "mss-global",
				Global: "(window.__MSS__ && window.__MSS__.product && (window.__MSS__.product.state || window.__MSS__.product.data)) || window.goods",
				Parse:  parseMusinsaProduct,
			},
			{Name: "json-ld", Selector: `script[type="application/ld+json"]`, Parse: extract.ParseJSONLD},
		},

		TitleSelectors: []string{"h2.product_title", "h3.product_title", "[class*='GoodsName']"},
		RelatedMarkers: append(slices.Clone(normalize.RelatedMarkers), "함께 본 상품", "비슷한 상품"),
		PriceSelectors: []string{
			"#goods_price", ".product_article_price", "#list_price",
			".product_price", ".price", ".price_num",
			"span.txt_price_member",
			".product-price", ".final_price", ".sale_price",
		},
		PriceMetaKeys:  []string{"product:sale_price:amount", "product:price:amount"},
		CouponPattern:  regexp.MustCompile(`쿠폰적용가\s*([\d,]+)`),
		SoldOutMarkers: []string{"btn_soldout"},

		SizeAPI: &extract.SizeAPI{
			URLTemplate: "https://goods-detail.musinsa.com/api2/goods/%s/actual-size",
			Timeout:     3 * time.Second,
			Headers:     map[string]string{"Origin": "https://www.musinsa.com"},
		},
		ShoeScan: &extract.ShoeScan{
			Sections:        []string{"[class*='option']", "[class*='Option']", "[class*='size']", "[class*='Size']", "section"},
			StockKeywords:   []string{"재고", "품절", "남음", "재입고", "stock", "sold out"},
			SoldOutKeywords: []string{"품절", "재입고", "입고 예정", "sold out", "soldout"},
			Min:             230,
			Max:             300,
			Step:            5,
		},
		SizeDropdowns: []extract.Dropdown{
			{Options: "#option1 option"},
		},
		SizeSelectors: []string{
			"[data-testid='size-option']",
			".option1 button", ".opt-list li button",
			".option_list li", "#size_list li", ".goods_opt_list li",
		},
		Notice: &extract.NoticePanel{
			Container:   "[class*='Notice'], [class*='notice'], .product_info_table",
			Toggle:      "[class*='Notice'] button, [class*='notice'] button",
			Rows:        "tr, li, dl",
			SizeLabels:  []string{"치수", "사이즈", "실측"},
			ColorLabels: []string{"색상", "컬러"},
		},
		ColorDropdowns: []extract.Dropdown{
			{Trigger: "[data-mds='Dropdown'] button, [class*='DropdownTrigger']", Options: "[role='option'], [class*='DropdownItem']", Labels: []string{"색상", "컬러", "color"}},
			{Options: "#option2 option"},
		},
		ColorLinks: []string{
			"a[href*='/products/'][class*='Color']",
			"a[href*='/goods/'][class*='color']",
			"[class*='ColorChip'] a[href]",
		},
	}
}

// parseMusinsaNextData digs the product object out of the Next.js payload
func parseMusinsaNextData(data interface{}) (*extract.Structured, error) {
	props := normalize.DigMap(data, "props", "pageProps")
	if props == nil {
		return nil, extract.NewError(extract.CodeStructuredDataShapeMismatch, "__NEXT_DATA__ has no pageProps", nil)
	}
	for _, state := range []map[string]interface{}{
		normalize.DigMap(props, "state"),
		normalize.DigMap(props, "initialState"),
		props,
	} {
		if state == nil {
			continue
		}
		for _, key := range []string{"product", "goods"} {
			if product := normalize.DigMap(state, key); product != nil {
				return parseMusinsaProduct(product)
			}
		}
	}
	return nil, extract.NewError(extract.CodeStructuredDataShapeMismatch, "__NEXT_DATA__ has no product", nil)
}

var musinsaOptions = extract.OptionReader{
	NameKeys: []string{"name", "nm", "optionValue"},
	SoldOut: func(opt map[string]interface{}) bool {
		if q, ok := opt["stockQty"]; ok && normalize.ToInt(q) == 0 {
			return true
		}
		return yes(opt["soldOutYn"]) || yes(opt["isSoldOut"])
	},
}

// parseMusinsaProduct reads a musinsa goods object (next-data product or
// the __MSS__ global)
func parseMusinsaProduct(data interface{}) (*extract.Structured, error) {
	product, ok := data.(map[string]interface{})
	if !ok {
		return nil, extract.NewError(extract.CodeStructuredDataShapeMismatch, "musinsa product is not an object", nil)
	}
	st := &extract.Structured{
		Title: normalize.FirstString(product, "goodsNm", "goodsName"),
		Price: musinsaPrice(product),
		Image: musinsaImage(normalize.FirstString(product, "goodsImage", "goodsImg", "thumbnailImageUrl")),
		Color: normalize.FirstString(product, "color", "colorName"),
	}
	if v, ok := product["isSoldOut"]; ok {
		sold := yes(v)
		st.SoldOut = &sold
	}

	for _, path := range [][]string{{"goodsOption", "optionValues"}, {"option", "list"}} {
		raw := normalize.Dig(product, path...)
		if raw == nil {
			continue
		}
		st.HasOptions = true
		if list, ok := raw.([]interface{}); ok && len(list) > 0 {
			st.Sizes = musinsaOptions.Read(list)
			break
		}
	}
	return st, nil
}

func musinsaPrice(product map[string]interface{}) int {
	for _, key := range []string{"goodsPrice", "salePrice"} {
		switch v := product[key].(type) {
		case map[string]interface{}:
			for _, inner := range []string{"salePrice", "finalPrice", "price", "normalPrice"} {
				if p := normalize.ToInt(v[inner]); p > 0 {
					return p
				}
			}
		default:
			if p := normalize.ToInt(v); p > 0 {
				return p
			}
		}
	}
	return 0
}

func musinsaImage(path string) string {
	if strings.HasPrefix(path, "/") && !strings.HasPrefix(path, "//") {
		return musinsaImageHost + path
	}
	return normalize.EnsureHTTPS(path)
}

func yes(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(t, "Y") || strings.EqualFold(t, "true")
	}
	return false
}
