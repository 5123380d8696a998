package balotilo

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// identifiers live inside rails nested-attribute field names such as
//
//	consultation[questions_attributes][<qid>][_destroy]
//	consultation[questions_attributes][<qid>][list_voting_new_lists][<lid>][_destroy]
//
// the bracket segment the identifier occupies depends on which structure is
// being queried, so extraction is parameterized on the segment index instead
// of slicing at a fixed depth.
const (
	questionMarker    = "questions_attributes"
	listMarker        = "list_voting_new_lists"
	destroyFlag       = "[_destroy]"
	questionIDSegment = 2
	listIDSegment     = 4
)

// bracketPath splits a nested field name into its segments:
// "a[b][c]" -> ["a", "b", "c"].
func bracketPath(name string) []string {
	var path []string
	for {
		open := strings.IndexByte(name, '[')
		if open < 0 {
			if name != "" {
				path = append(path, name)
			}
			return path
		}
		if open > 0 {
			path = append(path, name[:open])
		}
		end := strings.IndexByte(name[open:], ']')
		if end < 0 {
			return path
		}
		path = append(path, name[open+1:open+end])
		name = name[open+end+1:]
	}
}

// ExtractDynamicID pulls the server-assigned identifier out of the first
// input (in document order) whose name contains both the marker and the
// destroy flag, taking the bracket segment at the given index. Passing a
// narrower selection scopes the search to that container.
func ExtractDynamicID(scope *goquery.Selection, marker string, segment int) (DynamicID, error) {
	var id DynamicID
	scope.Find("input").EachWithBreak(func(_ int, input *goquery.Selection) bool {
		name := input.AttrOr("name", "")
		if !strings.Contains(name, marker) || !strings.Contains(name, destroyFlag) {
			return true
		}
		path := bracketPath(name)
		if segment >= len(path) {
			return true
		}
		id = DynamicID(path[segment])
		return false
	})
	if id == "" {
		return "", &DiscoveryError{Marker: marker}
	}
	return id, nil
}

// ExtractQuestionID finds the question identifier in an add_question
// fragment.
func ExtractQuestionID(scope *goquery.Selection) (DynamicID, error) {
	return ExtractDynamicID(scope, questionMarker, questionIDSegment)
}

// ExtractListID finds the list identifier in an add_list fragment.
func ExtractListID(scope *goquery.Selection) (DynamicID, error) {
	return ExtractDynamicID(scope, listMarker, listIDSegment)
}

// ExtractListsContainerID finds the id of the lists container div inside an
// add_question fragment. The id is threaded into every add_list request so
// the server knows which question the new slot belongs to.
func ExtractListsContainerID(scope *goquery.Selection) (DynamicID, error) {
	id := scope.Find("div.lists").First().AttrOr("id", "")
	if id == "" {
		return "", &DiscoveryError{Marker: "div.lists", Scope: "add_question fragment"}
	}
	return DynamicID(id), nil
}

// MetaCSRFToken reads the page-level anti-forgery token.
func MetaCSRFToken(doc *goquery.Document) (AnchorToken, error) {
	token := doc.Find("meta[name=csrf-token]").AttrOr("content", "")
	if token == "" {
		return "", &DiscoveryError{Marker: "meta[name=csrf-token]"}
	}
	return AnchorToken(token), nil
}

// FormToken reads the anti-forgery token embedded in a specific form.
func FormToken(form *goquery.Selection) (AnchorToken, error) {
	token := form.Find("input[name=authenticity_token]").AttrOr("value", "")
	if token == "" {
		return "", &DiscoveryError{Marker: "input[name=authenticity_token]"}
	}
	return AnchorToken(token), nil
}
