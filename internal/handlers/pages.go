package handlers

import (
	"net/http"
)

// Page is a client view selected by path
type Page struct {
	Path string `json:"path"`
	View string `json:"view"`
}

// NotFoundView is served for any path outside the page table
const NotFoundView = "not-found"

// Pages is the storefront route table. None of the views require a session.
var Pages = []Page{
	{Path: "/", View: "event-discovery-dashboard"},
	{Path: "/login-register", View: "login-register"},
	{Path: "/shopping-cart-checkout", View: "shopping-cart-checkout"},
	{Path: "/my-tickets-qr-codes", View: "my-tickets-qr-codes"},
	{Path: "/event-discovery-dashboard", View: "event-discovery-dashboard"},
	{Path: "/event-details-booking", View: "event-details-booking"},
	{Path: "/admin-control-panel", View: "admin-control-panel"},
}

func pageHandler(page Page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, page)
	}
}

// notFoundPage answers unknown paths with the not-found view
func notFoundPage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, Page{Path: r.URL.Path, View: NotFoundView})
}
