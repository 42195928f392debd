package handler

import (
	"errors"
	"net"
	"net/http"
	"time"

	"ecobot/internal/logger"
	"ecobot/internal/service"
	"ecobot/internal/service/mapview"

	"github.com/gorilla/websocket"
)

// GlobalMapSocket is the live globe endpoint.
const GlobalMapSocket = "/ws/global-map"

const writeWait = 5 * time.Second

// Upgrader upgrades HTTP connections to WebSocket; CheckOrigin allows all origins.
var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type globalMapData struct {
	RecordCount int
	Legend      []mapview.LegendEntry
}

// GlobalMapHandler serves the globe page with the current records embedded.
func GlobalMapHandler(manager *service.Manager, pages *Pages, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := manager.ListRecords(r.Context())
		if err != nil {
			logger.Error("Error listing detection records: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		section := buildMap(r.Context(), manager, logger, mapview.ModeGlobal, nil, "", records)
		section.Socket = GlobalMapSocket

		pages.render(w, logger, http.StatusOK, PageGlobalMap, pageData{
			Title:  "Global Map",
			Active: "map",
			Map:    section,
			Data: globalMapData{
				RecordCount: len(records),
				Legend:      mapview.Legend,
			},
		})
	}
}

// GlobalMapWebsocketHandler runs one live map view per connection. The
// view streams frames to the browser, receives its interaction events and
// picks up records stored while the page is open.
func GlobalMapWebsocketHandler(manager *service.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connection, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("WebSocket upgrade error: %v", err)
			return
		}
		defer connection.Close()

		m := manager.GetMetrics()
		m.MapViewOpened()
		defer m.MapViewClosed()

		hub := manager.GetHub()
		sub := hub.Subscribe()
		if sub == nil {
			return
		}
		defer hub.Unsubscribe(sub)

		records, err := manager.ListRecords(r.Context())
		if err != nil {
			logger.Error("Error listing detection records: %v", err)
			closeWith(connection, websocket.CloseInternalServerErr, "records unavailable")
			return
		}

		sink := mapview.SinkFunc(func(frame mapview.Frame) error {
			connection.SetWriteDeadline(time.Now().Add(writeWait))
			return connection.WriteJSON(frame)
		})
		view := mapview.New(manager.MapOptions(mapview.ModeGlobal), sink, logger)
		defer view.Dispose()

		if err := view.SetDataset(records); err != nil {
			logger.Error("Error building map dataset: %v", err)
			return
		}
		if err := view.Init(r.Context()); err != nil {
			if errors.Is(err, mapview.ErrMissingToken) {
				closeWith(connection, websocket.ClosePolicyViolation, "map token missing")
			} else {
				logger.Error("Map view initialisation failed: %v", err)
			}
			return
		}

		logger.Info("Global map viewer connected")

		done := make(chan struct{})
		defer close(done)
		events := make(chan mapview.ClientEvent)
		go func() {
			defer close(events)
			for {
				var ev mapview.ClientEvent
				if err := connection.ReadJSON(&ev); err != nil {
					if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
						logger.Info("Global map viewer disconnected normally")
					} else if !errors.Is(err, net.ErrClosed) {
						logger.Warning("Global map viewer disconnected with error: %v", err)
					}
					return
				}
				select {
				case events <- ev:
				case <-done:
					return
				}
			}
		}()

		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				if err := view.Handle(ev); err != nil {
					logger.Debug("Ignoring map event: %v", err)
				}
			case rec, ok := <-sub.C:
				if !ok {
					return
				}
				records = append(records, rec)
				if err := view.SetDataset(records); err != nil {
					logger.Warning("Dropping global map viewer: %v", err)
					return
				}
			}
		}
	}
}

func closeWith(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
