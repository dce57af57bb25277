// Package fakeweaviate is an in-memory stand-in for the Weaviate REST and gRPC
// APIs used by package tests.
package fakeweaviate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate/entities/models"
)

// Call is one request seen by the server.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Server keeps classes, tenants and objects in memory.
type Server struct {
	*httptest.Server

	mu      sync.RWMutex
	version string
	classes map[string]*models.Class
	tenants map[string]map[string]*models.Tenant // class -> name -> tenant
	objects map[string]*models.Object            // key(tenant, class, id)
	shards  map[string]string                    // class/shard -> status
	calls   []Call
}

// New starts a server reporting version from /v1/meta. An empty version makes
// /v1/meta fail with 500.
func New(version string) *Server {
	s := &Server{
		version: version,
		classes: make(map[string]*models.Class),
		tenants: make(map[string]map[string]*models.Tenant),
		objects: make(map[string]*models.Object),
		shards:  make(map[string]string),
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

// Host returns host:port suitable for the client configuration.
func (s *Server) Host() string {
	return strings.TrimPrefix(s.URL, "http://")
}

// SetVersion changes the version reported by /v1/meta.
func (s *Server) SetVersion(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version = v
}

// Calls returns a copy of the recorded requests.
func (s *Server) Calls() []Call {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount counts recorded requests with the given method and path.
func (s *Server) CallCount(method, path string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

// Object returns a stored object.
func (s *Server) Object(tenant, class, id string) (*models.Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.objects[key(tenant, class, id)]
	return o, ok
}

// ObjectCount returns the number of stored objects.
func (s *Server) ObjectCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// AddClass stores a class definition directly.
func (s *Server) AddClass(c *models.Class) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.classes[c.Class] = c
}

func key(tenant, class, id string) string {
	return tenant + "|" + class + "|" + id
}

func (s *Server) routes() http.Handler {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(s.record)

	v1 := r.Group("/v1")
	v1.GET("/meta", handle(s.meta))
	v1.GET("/.well-known/live", handle(ok))
	v1.GET("/.well-known/ready", handle(ok))
	v1.GET("/.well-known/openid-configuration", func(c *gin.Context) {
		c.Status(http.StatusNotFound)
	})

	v1.GET("/schema", handle(s.getSchema))
	v1.POST("/schema", handle(s.createClass))
	v1.GET("/schema/:class", handle(s.getClass))
	v1.PUT("/schema/:class", handle(s.updateClass))
	v1.DELETE("/schema/:class", handle(s.deleteClass))
	v1.POST("/schema/:class/properties", handle(s.addProperty))
	v1.GET("/schema/:class/shards", handle(s.getShards))
	v1.PUT("/schema/:class/shards/:shard", handle(s.updateShard))
	v1.GET("/schema/:class/tenants", handle(s.getTenants))
	v1.POST("/schema/:class/tenants", handle(s.addTenants))
	v1.PUT("/schema/:class/tenants", handle(s.addTenants))
	v1.DELETE("/schema/:class/tenants", handle(s.deleteTenants))
	v1.HEAD("/schema/:class/tenants/:tenant", handle(s.tenantExists))

	v1.GET("/objects", handle(s.listObjects))
	v1.POST("/objects", handle(s.createObject))
	v1.GET("/objects/:class/:id", handle(s.getObject))
	v1.HEAD("/objects/:class/:id", handle(s.headObject))
	v1.PUT("/objects/:class/:id", handle(s.putObject))
	v1.PATCH("/objects/:class/:id", handle(s.patchObject))
	v1.DELETE("/objects/:class/:id", handle(s.deleteObject))
	v1.GET("/objects/:class", byID(s.getObject))
	v1.HEAD("/objects/:class", byID(s.headObject))
	v1.DELETE("/objects/:class", byID(s.deleteObject))

	v1.POST("/objects/validate", handle(s.validateObject))
	v1.POST("/objects/:class/:id/references/:prop", handle(s.addReference))
	v1.PUT("/objects/:class/:id/references/:prop", handle(s.replaceReferences))
	v1.DELETE("/objects/:class/:id/references/:prop", handle(s.deleteReference))

	v1.POST("/batch/objects", handle(s.batchObjects))
	v1.POST("/graphql", handle(s.graphql))

	return r
}

// record keeps every request, body included, for later assertions.
func (s *Server) record(c *gin.Context) {
	r := c.Request
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))
	s.mu.Lock()
	s.calls = append(s.calls, Call{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query(), Header: r.Header.Clone(), Body: body})
	s.mu.Unlock()
	c.Next()
}

// handle runs an http handler with the gin route params exposed through
// r.PathValue.
func handle(h http.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, p := range c.Params {
			c.Request.SetPathValue(p.Key, p.Value)
		}
		h(c.Writer, c.Request)
	}
}

// byID serves the class-less /objects/{id} form. The id segment shares the
// :class wildcard with the namespaced routes.
func byID(h http.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.SetPathValue("id", c.Param("class"))
		h(c.Writer, c.Request)
	}
}

func ok(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, format string, args ...interface{}) {
	writeJSON(w, status, &models.ErrorResponse{
		Error: []*models.ErrorResponseErrorItems0{{Message: fmt.Sprintf(format, args...)}},
	})
}

func (s *Server) meta(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	v := s.version
	s.mu.RUnlock()
	if v == "" {
		writeError(w, http.StatusInternalServerError, "meta unavailable")
		return
	}
	writeJSON(w, http.StatusOK, &models.Meta{Hostname: "http://[::]:8080", Version: v})
}

func (s *Server) getSchema(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.classes))
	for name := range s.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	schema := &models.Schema{}
	for _, name := range names {
		schema.Classes = append(schema.Classes, s.classes[name])
	}
	writeJSON(w, http.StatusOK, schema)
}

func (s *Server) createClass(w http.ResponseWriter, r *http.Request) {
	var c models.Class
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil || c.Class == "" {
		writeError(w, http.StatusUnprocessableEntity, "invalid class")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.classes[c.Class]; exists {
		writeError(w, http.StatusUnprocessableEntity, "class name %q already exists", c.Class)
		return
	}
	s.classes[c.Class] = &c
	writeJSON(w, http.StatusOK, &c)
}

func (s *Server) getClass(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, found := s.classes[r.PathValue("class")]
	if !found {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) updateClass(w http.ResponseWriter, r *http.Request) {
	var c models.Class
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid class")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, found := s.classes[r.PathValue("class")]; !found {
		writeError(w, http.StatusNotFound, "class not found")
		return
	}
	s.classes[r.PathValue("class")] = &c
	writeJSON(w, http.StatusOK, &c)
}

func (s *Server) deleteClass(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	class := r.PathValue("class")
	delete(s.classes, class)
	delete(s.tenants, class)
	for k, o := range s.objects {
		if o.Class == class {
			delete(s.objects, k)
		}
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) addProperty(w http.ResponseWriter, r *http.Request) {
	var p models.Property
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid property")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, found := s.classes[r.PathValue("class")]
	if !found {
		writeError(w, http.StatusNotFound, "class not found")
		return
	}
	c.Properties = append(c.Properties, &p)
	writeJSON(w, http.StatusOK, &p)
}

// Every class has a single shard named after it until a status is set.
func (s *Server) getShards(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	class := r.PathValue("class")
	if _, found := s.classes[class]; !found {
		writeError(w, http.StatusNotFound, "class %q not found", class)
		return
	}
	name := strings.ToLower(class) + "-shard"
	status, set := s.shards[class+"/"+name]
	if !set {
		status = "READY"
	}
	writeJSON(w, http.StatusOK, []map[string]string{{"name": name, "status": status}})
}

func (s *Server) updateShard(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Status == "" {
		writeError(w, http.StatusUnprocessableEntity, "invalid shard status")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shards[r.PathValue("class")+"/"+r.PathValue("shard")] = body.Status
	writeJSON(w, http.StatusOK, map[string]string{"status": body.Status})
}

func (s *Server) getTenants(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Tenant{}
	for _, t := range s.tenants[r.PathValue("class")] {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) addTenants(w http.ResponseWriter, r *http.Request) {
	var in []*models.Tenant
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid tenants")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	class := r.PathValue("class")
	if _, found := s.classes[class]; !found {
		writeError(w, http.StatusUnprocessableEntity, "class %q not found", class)
		return
	}
	if s.tenants[class] == nil {
		s.tenants[class] = make(map[string]*models.Tenant)
	}
	for _, t := range in {
		if t.ActivityStatus == "" {
			t.ActivityStatus = "HOT"
		}
		s.tenants[class][t.Name] = t
	}
	writeJSON(w, http.StatusOK, in)
}

func (s *Server) deleteTenants(w http.ResponseWriter, r *http.Request) {
	var names []string
	if err := json.NewDecoder(r.Body).Decode(&names); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid tenant names")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range names {
		delete(s.tenants[r.PathValue("class")], n)
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) tenantExists(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, found := s.tenants[r.PathValue("class")][r.PathValue("tenant")]; found {
		w.WriteHeader(http.StatusOK)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

// lookup resolves /objects/{id} (any class) and /objects/{class}/{id}.
func (s *Server) lookup(r *http.Request) (string, *models.Object) {
	tenant := r.URL.Query().Get("tenant")
	id := r.PathValue("id")
	if class := r.PathValue("class"); class != "" {
		k := key(tenant, class, id)
		return k, s.objects[k]
	}
	for k, o := range s.objects {
		if string(o.ID) == id && o.Tenant == tenant {
			return k, o
		}
	}
	return "", nil
}

func (s *Server) listObjects(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	class := r.URL.Query().Get("class")
	tenant := r.URL.Query().Get("tenant")
	out := []*models.Object{}
	for _, o := range s.objects {
		if (class == "" || o.Class == class) && o.Tenant == tenant {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, &models.ObjectsListResponse{Objects: out, TotalResults: int64(len(out))})
}

func (s *Server) store(o *models.Object) {
	if o.ID == "" {
		o.ID = strfmt.UUID(uuid.NewString())
	}
	s.objects[key(o.Tenant, o.Class, string(o.ID))] = o
}

func (s *Server) createObject(w http.ResponseWriter, r *http.Request) {
	var o models.Object
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil || o.Class == "" {
		writeError(w, http.StatusUnprocessableEntity, "invalid object")
		return
	}
	if o.Tenant == "" {
		o.Tenant = r.URL.Query().Get("tenant")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objects[key(o.Tenant, o.Class, string(o.ID))]; exists && o.ID != "" {
		writeError(w, http.StatusUnprocessableEntity, "id %q already exists", o.ID)
		return
	}
	s.store(&o)
	writeJSON(w, http.StatusOK, &o)
}

func (s *Server) getObject(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, o := s.lookup(r)
	if o == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) headObject(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, o := s.lookup(r); o == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) putObject(w http.ResponseWriter, r *http.Request) {
	var o models.Object
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid object")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	k, existing := s.lookup(r)
	if existing == nil {
		writeError(w, http.StatusNotFound, "no object with id %s", r.PathValue("id"))
		return
	}
	delete(s.objects, k)
	s.store(&o)
	writeJSON(w, http.StatusOK, &o)
}

func (s *Server) patchObject(w http.ResponseWriter, r *http.Request) {
	var o models.Object
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid object")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, existing := s.lookup(r)
	if existing == nil {
		writeError(w, http.StatusNotFound, "no object with id %s", r.PathValue("id"))
		return
	}
	merged, _ := existing.Properties.(map[string]interface{})
	if merged == nil {
		merged = map[string]interface{}{}
	}
	if patch, ok := o.Properties.(map[string]interface{}); ok {
		for k, v := range patch {
			merged[k] = v
		}
	}
	existing.Properties = merged
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteObject(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, o := s.lookup(r)
	if o == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	delete(s.objects, k)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) batchObjects(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Objects []*models.Object `json:"objects"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid batch")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]interface{}, 0, len(body.Objects))
	for _, o := range body.Objects {
		entry := map[string]interface{}{"class": o.Class, "properties": o.Properties, "tenant": o.Tenant}
		if _, found := s.classes[o.Class]; !found {
			entry["id"] = o.ID
			entry["result"] = map[string]interface{}{
				"status": "FAILED",
				"errors": map[string]interface{}{"error": []map[string]string{{"message": fmt.Sprintf("class %q not found", o.Class)}}},
			}
			out = append(out, entry)
			continue
		}
		s.store(o)
		entry["id"] = o.ID
		entry["result"] = map[string]interface{}{"status": "SUCCESS"}
		out = append(out, entry)
	}
	writeJSON(w, http.StatusOK, out)
}

// graphql answers every query with the number of stored objects per class.
// Queries naming an unknown class get a GraphQL error.
func (s *Server) graphql(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Query == "" {
		writeError(w, http.StatusUnprocessableEntity, "query is required")
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := map[string]int{}
	for name := range s.classes {
		counts[name] = 0
	}
	for _, o := range s.objects {
		counts[o.Class]++
	}
	if strings.Contains(body.Query, "Unknown") {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"errors": []map[string]interface{}{{"message": "Cannot query field \"Unknown\" on type \"GetObjectsObj\"."}},
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": map[string]interface{}{"Counts": counts}})
}

func (s *Server) validateObject(w http.ResponseWriter, r *http.Request) {
	var o models.Object
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid object")
		return
	}
	s.mu.RLock()
	_, found := s.classes[o.Class]
	s.mu.RUnlock()
	if !found {
		writeError(w, http.StatusUnprocessableEntity, "class %q not found", o.Class)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// refs returns the references stored under prop.
func refs(o *models.Object, prop string) []interface{} {
	props, _ := o.Properties.(map[string]interface{})
	if props == nil {
		return nil
	}
	list, _ := props[prop].([]interface{})
	return list
}

func setRefs(o *models.Object, prop string, list []interface{}) {
	props, _ := o.Properties.(map[string]interface{})
	if props == nil {
		props = map[string]interface{}{}
		o.Properties = props
	}
	props[prop] = list
}

func (s *Server) addReference(w http.ResponseWriter, r *http.Request) {
	var ref map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&ref); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid reference")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, o := s.lookup(r)
	if o == nil {
		writeError(w, http.StatusNotFound, "no object with id %s", r.PathValue("id"))
		return
	}
	prop := r.PathValue("prop")
	setRefs(o, prop, append(refs(o, prop), ref))
	w.WriteHeader(http.StatusOK)
}

func (s *Server) replaceReferences(w http.ResponseWriter, r *http.Request) {
	var list []interface{}
	if err := json.NewDecoder(r.Body).Decode(&list); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid references")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, o := s.lookup(r)
	if o == nil {
		writeError(w, http.StatusNotFound, "no object with id %s", r.PathValue("id"))
		return
	}
	setRefs(o, r.PathValue("prop"), list)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) deleteReference(w http.ResponseWriter, r *http.Request) {
	var ref map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&ref); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid reference")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, o := s.lookup(r)
	if o == nil {
		writeError(w, http.StatusNotFound, "no object with id %s", r.PathValue("id"))
		return
	}
	prop := r.PathValue("prop")
	kept := []interface{}{}
	for _, existing := range refs(o, prop) {
		if m, ok := existing.(map[string]interface{}); ok && m["beacon"] == ref["beacon"] {
			continue
		}
		kept = append(kept, existing)
	}
	setRefs(o, prop, kept)
	w.WriteHeader(http.StatusNoContent)
}
