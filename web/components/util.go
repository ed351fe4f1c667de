package components

import (
	"fmt"
	"net/url"
	"strconv"
)

// getLinkForKey returns the page a key links to.
func getLinkForKey(keyboard string, index int, pageType PageType) string {
	switch pageType {
	case PageTypeNeighbors:
		return keyURL("/neighbors", keyboard, index)
	default:
		return keyURL("/combo", keyboard, index)
	}
}

// getSwitchModeLink returns the URL to switch between combo and neighbors modes.
func getSwitchModeLink(keyboard string, index int, currentPageType PageType) string {
	switch currentPageType {
	case PageTypeCombo:
		return keyURL("/neighbors", keyboard, index)
	case PageTypeNeighbors:
		return keyURL("/combo", keyboard, index)
	default:
		return keyboardURL("/", keyboard)
	}
}

// getSwitchModeButtonText returns the text of the mode switch button.
func getSwitchModeButtonText(currentPageType PageType) string {
	switch currentPageType {
	case PageTypeCombo:
		return "View Neighbors"
	case PageTypeNeighbors:
		return "View Combos"
	default:
		return ""
	}
}

// navPage is the page the keyboard switcher links to.
func navPage(pageType PageType) string {
	if pageType == PageTypeLayout {
		return "/layout"
	}

	return "/"
}

func keyFill(c *RenderContext, item Item) string {
	if c.Page == PageTypeLayout {
		return "#eee"
	}

	return HeatColor(item.Count, c.MaxVal)
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func keyboardURL(path, keyboard string) string {
	return path + "?" + url.Values{"keyboard": {keyboard}}.Encode()
}

func keyURL(path, keyboard string, index int) string {
	return path + "?" + url.Values{"keyboard": {keyboard}, "key": {fmt.Sprint(index)}}.Encode()
}
