package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/law-makers/goodscrawl/internal/normalize"
)

const maxSizeAPIBody = 1 << 20

// Measurements maps a size label to its named numeric measurements
type Measurements map[string]map[string]float64

// fetchSizeAPI calls the sizing endpoint once under the aux timeout.
// Every failure is reported as AUX_API_UNAVAILABLE.
func fetchSizeAPI(c *Context) (Measurements, []string, error) {
	api := c.Set.SizeAPI
	if api == nil {
		return nil, nil, absent(CodeAuxAPIUnavailable, "site has no sizing API")
	}
	if c.GoodsID == "" {
		return nil, nil, absent(CodeAuxAPIUnavailable, "no goods id in URL")
	}

	timeout := api.Timeout
	if timeout <= 0 {
		timeout = c.Options.AuxTimeout
	}
	ctx, cancel := context.WithTimeout(c.Ctx(), timeout)
	defer cancel()

	endpoint := api.URL(c.GoodsID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil, NewError(CodeAuxAPIUnavailable, "bad sizing API request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Referer", c.URL)
	for k, v := range api.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, nil, NewError(CodeAuxAPIUnavailable, "sizing API call failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, absent(CodeAuxAPIUnavailable, "sizing API returned %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSizeAPIBody))
	if err != nil {
		return nil, nil, NewError(CodeAuxAPIUnavailable, "sizing API body unreadable", err)
	}
	return ParseSizeAPI(body)
}

// ParseSizeAPI matches a sizing API body against the apparel shape
// (sizes[].items[] of named values) and then the footwear shape
// (footSize[] of lengths). Labels are returned in API order.
func ParseSizeAPI(body []byte) (Measurements, []string, error) {
	var root interface{}
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, nil, NewError(CodeAuxAPIUnavailable, "sizing API body is not JSON", err)
	}
	for _, tree := range []interface{}{normalize.Dig(root, "data"), root} {
		if tree == nil {
			continue
		}
		if m, labels := apparelShape(tree); len(labels) > 0 {
			return m, labels, nil
		}
		if m, labels := footwearShape(tree); len(labels) > 0 {
			return m, labels, nil
		}
	}
	return nil, nil, absent(CodeAuxAPIUnavailable, "sizing API body matches no known shape")
}

func apparelShape(tree interface{}) (Measurements, []string) {
	out := Measurements{}
	var labels []string
	for _, item := range normalize.DigList(tree, "sizes") {
		size, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		label := normalize.FirstString(size, "name", "sizeName")
		if label == "" {
			continue
		}
		fields := map[string]float64{}
		for _, raw := range normalize.DigList(size, "items") {
			m, ok := raw.(map[string]interface{})
			if !ok {
				continue
			}
			name := normalize.DigString(m, "name")
			value, ok := normalize.ToFloat(m["value"])
			if name == "" || !ok {
				continue
			}
			fields[name] = value
		}
		if len(fields) == 0 {
			continue
		}
		if _, dup := out[label]; !dup {
			labels = append(labels, label)
		}
		out[label] = fields
	}
	return out, labels
}

func footwearShape(tree interface{}) (Measurements, []string) {
	out := Measurements{}
	var labels []string
	for _, item := range normalize.DigList(tree, "footSize") {
		size, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		length, ok := normalize.ToFloat(firstNonNil(size["length"], size["footLength"]))
		if !ok || length <= 0 {
			continue
		}
		label := normalize.FirstString(size, "name", "size")
		if label == "" {
			label = fmt.Sprintf("%g", length)
		}
		if _, dup := out[label]; !dup {
			labels = append(labels, label)
		}
		out[label] = map[string]float64{"length": length}
	}
	return out, labels
}
