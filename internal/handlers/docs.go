package handlers

import (
	"encoding/json"
	"net/http"
)

// OpenAPISpec returns the OpenAPI 3.0 specification for the Regatta Server API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	queryParam := func(name, description, typ string, required bool) map[string]interface{} {
		return map[string]interface{}{
			"name":        name,
			"in":          "query",
			"description": description,
			"required":    required,
			"schema":      map[string]string{"type": typ},
		}
	}

	jsonResponse := func(description string) map[string]interface{} {
		return map[string]interface{}{
			"200": map[string]interface{}{
				"description": description,
				"content": map[string]interface{}{
					"application/json": map[string]interface{}{
						"schema": map[string]string{"type": "object"},
					},
				},
			},
		}
	}

	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Regatta Server API",
			"description": "Racing-area conditions, tactical start-line analysis, notice board, and entry list for regatta mobile clients",
			"version":     "1.0.0",
			"contact": map[string]string{
				"name": "Regatta Server Team",
			},
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/api/conditions": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get current conditions",
					"description": "Weather, marine state, and the spatial grid for the racing area. Source is live, cached, or simulated.",
					"responses":   jsonResponse("Current condition snapshot"),
				},
			},
			"/api/conditions/refresh": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":     "Force a condition refresh",
					"description": "Regenerates the snapshot regardless of age and broadcasts it to stream subscribers",
					"responses":   jsonResponse("Fresh condition snapshot"),
				},
			},
			"/api/conditions/grid": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":   "Get the spatial condition grid",
					"responses": jsonResponse("8x8 grid of interpolated data points"),
				},
			},
			"/api/conditions/markers": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":   "Get renderable map markers",
					"responses": jsonResponse("Wind arrows with color, rotation, and label per grid cell"),
				},
			},
			"/api/tactical": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Analyze the start line",
					"description": "Favored end, wind stability, and current impact for the given start line",
					"parameters": []map[string]interface{}{
						queryParam("line_bearing", "Bearing from pin to committee boat, degrees true", "number", false),
						queryParam("pin_lat", "Pin end latitude, alternative to line_bearing", "number", false),
						queryParam("pin_lon", "Pin end longitude", "number", false),
						queryParam("boat_lat", "Committee boat latitude", "number", false),
						queryParam("boat_lon", "Committee boat longitude", "number", false),
					},
					"responses": jsonResponse("Tactical report"),
				},
			},
			"/api/stations": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "List reference stations",
					"parameters": []map[string]interface{}{
						queryParam("kind", "Filter by station kind: tide, wave, or wind", "string", false),
						queryParam("radius_km", "Limit to stations within this radius; requires kind, lat, and lon", "number", false),
						queryParam("lat", "Reference latitude for the radius filter", "number", false),
						queryParam("lon", "Reference longitude for the radius filter", "number", false),
					},
					"responses": jsonResponse("Deduplicated station list"),
				},
			},
			"/api/stations/nearest": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Find the nearest station of a kind",
					"parameters": []map[string]interface{}{
						queryParam("kind", "Station kind: tide, wave, or wind", "string", true),
						queryParam("lat", "Reference latitude", "number", true),
						queryParam("lon", "Reference longitude", "number", true),
					},
					"responses": jsonResponse("Nearest station with distance in km"),
				},
			},
			"/api/notices": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "List notice board entries",
					"parameters": []map[string]interface{}{
						queryParam("category", "Filter by category", "string", false),
						queryParam("unread", "Only unread notices when true", "boolean", false),
						queryParam("bookmarked", "Only bookmarked notices when true", "boolean", false),
						queryParam("page", "Page number (default: 1)", "integer", false),
						queryParam("limit", "Records per page (default: 50)", "integer", false),
					},
					"responses": jsonResponse("Paginated notices with source and degraded flags"),
				},
				"post": map[string]interface{}{
					"summary":   "Post a notice",
					"responses": jsonResponse("Created notice"),
				},
			},
			"/api/notices/{id}/read": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":   "Mark a notice as read",
					"responses": jsonResponse("Read confirmation"),
				},
			},
			"/api/notices/{id}/bookmark": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":   "Toggle a notice bookmark",
					"responses": jsonResponse("New bookmark state"),
				},
			},
			"/api/notices/refresh": map[string]interface{}{
				"post": map[string]interface{}{
					"summary":   "Refresh the notice board",
					"responses": jsonResponse("Fresh notice list, pushed to stream subscribers"),
				},
			},
			"/api/documents": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "List regatta documents",
					"parameters": []map[string]interface{}{
						queryParam("kind", "Filter by document kind", "string", false),
					},
					"responses": jsonResponse("Document list"),
				},
			},
			"/api/competitors": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "List entrants",
					"parameters": []map[string]interface{}{
						queryParam("class", "Filter by boat class", "string", false),
						queryParam("registration", "Filter by registration status", "string", false),
						queryParam("payment", "Filter by payment status", "string", false),
						queryParam("page", "Page number (default: 1)", "integer", false),
						queryParam("limit", "Records per page (default: 50)", "integer", false),
					},
					"responses": jsonResponse("Paginated entry list"),
				},
				"post": map[string]interface{}{
					"summary":   "Register or update an entrant",
					"responses": jsonResponse("Upserted competitor"),
				},
			},
			"/api/calendar/event": map[string]interface{}{
				"get": map[string]interface{}{
					"summary": "Export a calendar event",
					"parameters": []map[string]interface{}{
						queryParam("title", "Event title", "string", true),
						queryParam("start", "Start time, 2006-01-02T15:04", "string", true),
						queryParam("end", "End time, defaults to start plus one hour", "string", false),
						queryParam("location", "Event location", "string", false),
						queryParam("notes", "Event notes", "string", false),
						queryParam("format", "ics (default) or text", "string", false),
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "iCalendar document or plain-text fallback",
							"content": map[string]interface{}{
								"text/calendar": map[string]interface{}{"schema": map[string]string{"type": "string"}},
								"text/plain":    map[string]interface{}{"schema": map[string]string{"type": "string"}},
							},
						},
					},
				},
			},
			"/ws": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Stream updates",
					"description": "WebSocket feed of conditions, notices, and entrants changes. Lagging clients receive only the most recent update per collection.",
					"responses":   jsonResponse("Upgraded connection"),
				},
			},
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Health check",
					"description": "Per-subsystem health. The service stays up in degraded mode when backends are down.",
					"responses":   jsonResponse("Subsystem status map"),
				},
			},
			"/metrics": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Prometheus metrics",
					"description": "Prometheus metrics endpoint for monitoring",
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Prometheus metrics in text format",
							"content": map[string]interface{}{
								"text/plain": map[string]interface{}{
									"schema": map[string]string{"type": "string"},
								},
							},
						},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
