package sandbox

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Ratio1/fetchstore_sdk_go/internal/devseed"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/envelope"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/fetch"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/messages"
)

// maxPageLimit caps the page size a client may request.
const maxPageLimit = 1000

func queryInt(r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func (s *Server) listCollection(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["collection"]
	limit, okLimit := queryInt(r, "limit", envelope.DefaultLimit)
	cursor, okCursor := queryInt(r, "cursor", 0)
	if !okLimit || !okCursor || limit == 0 {
		s.fail(w, r, http.StatusBadRequest, messages.FromServiceError("Invalid paging parameters"))
		return
	}

	items, ok := s.Collection(name)
	if !ok {
		s.fail(w, r, http.StatusNotFound, messages.FromServiceError("Collection {0} does not exist", name))
		return
	}

	limit = min(limit, maxPageLimit)
	paging := envelope.Paging{Limit: limit}
	start := min(cursor, len(items))
	end := start + min(limit, len(items)-start)
	if start > 0 {
		paging.Prev = pageLink(name, max(start-limit, 0), limit)
	}
	if end < len(items) {
		paging.Next = pageLink(name, end, limit)
	}
	s.respond(w, r, http.StatusOK, envelope.NewCollectionResponse(nil, paging, items[start:end]))
}

func (s *Server) replaceCollection(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["collection"]
	var items []Item
	empty, err := s.decodeOptionalBody(w, r, &items, true)
	if err != nil {
		return
	}
	if empty || items == nil {
		items = []Item{}
	}
	for i, it := range items {
		if devseed.ItemID(it) == "" {
			s.fail(w, r, http.StatusBadRequest, messages.FromEntityError("Item {0} has no id", strconv.Itoa(i)))
			return
		}
	}

	s.mu.Lock()
	s.collections[name] = items
	s.mu.Unlock()

	msgs := messages.New()
	msgs.Add(messages.Service, messages.Information, "Stored {0} items", strconv.Itoa(len(items)))
	s.respond(w, r, http.StatusOK, envelope.NewCollectionResponse[Item](msgs, envelope.DefaultPaging(), nil))
}

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["collection"]
	var item Item
	if err := s.decodeBody(w, r, &item); err != nil {
		return
	}
	id := devseed.ItemID(item)
	if id == "" {
		id = newID()
		item["id"] = id
	}

	s.mu.Lock()
	items := s.collections[name]
	if indexOf(items, id) >= 0 {
		s.mu.Unlock()
		s.fail(w, r, http.StatusBadRequest, messages.FromEntityError("Item {0} already exists", id))
		return
	}
	s.collections[name] = append(items, cloneItem(item))
	s.mu.Unlock()

	s.respondItem(w, r, http.StatusCreated, item)
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	s.mu.RLock()
	items := s.collections[vars["collection"]]
	i := indexOf(items, vars["id"])
	var item Item
	if i >= 0 {
		item = cloneItem(items[i])
	}
	s.mu.RUnlock()

	if item == nil {
		s.fail(w, r, http.StatusNotFound, messages.FromEntityError("Item {0} not found", vars["id"]))
		return
	}
	s.respond(w, r, http.StatusOK, envelope.NewEntityResponse(nil, &item))
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var item Item
	if err := s.decodeBody(w, r, &item); err != nil {
		return
	}
	if id := devseed.ItemID(item); id != "" && id != vars["id"] {
		s.fail(w, r, http.StatusBadRequest, messages.FromEntityError("Item id {0} does not match path", id))
		return
	}
	item["id"] = vars["id"]

	s.mu.Lock()
	items := s.collections[vars["collection"]]
	i := indexOf(items, vars["id"])
	if i < 0 {
		s.mu.Unlock()
		s.fail(w, r, http.StatusNotFound, messages.FromEntityError("Item {0} not found", vars["id"]))
		return
	}
	items[i] = cloneItem(item)
	s.mu.Unlock()

	s.respondItem(w, r, http.StatusOK, item)
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	s.mu.Lock()
	items := s.collections[vars["collection"]]
	i := indexOf(items, vars["id"])
	if i >= 0 {
		s.collections[vars["collection"]] = append(items[:i:i], items[i+1:]...)
	}
	s.mu.Unlock()

	if i < 0 {
		s.fail(w, r, http.StatusNotFound, messages.FromEntityError("Item {0} not found", vars["id"]))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respondItem returns the stored entity only when the client asked for it.
func (s *Server) respondItem(w http.ResponseWriter, r *http.Request, code int, item Item) {
	if r.Header.Get(fetch.HeaderWantsResponse) == "" {
		s.respond(w, r, code, envelope.NewEntityResponse[Item](nil, nil))
		return
	}
	s.respond(w, r, code, envelope.NewEntityResponse(nil, &item))
}
