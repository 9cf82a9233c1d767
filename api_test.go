package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/CodedInternet/gobraille/comms"
	"github.com/CodedInternet/gobraille/onboard"
	"github.com/CodedInternet/gobraille/onboard/store"
)

func setupTestDevice(t *testing.T) *onboard.SimulatedLink {
	setupTestDB(t)
	ENV.JWT_SECRET = ""

	var err error
	ENV.Journal, err = store.NewJournal(ENV.DB)
	if err != nil {
		t.Fatal(err)
	}

	st, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	var config onboard.DeviceConfig
	config.Device.AckTimeout = 50 * time.Millisecond
	config.Device.Settle = time.Millisecond
	config.Defaults()

	link := onboard.NewSimulatedLink()
	link.Delay = 0
	ENV.Device, err = onboard.NewDevice(config, link, st, ENV.Journal)
	if err != nil {
		t.Fatal(err)
	}

	ENV.Router = comms.NewRouter(comms.NewStack(0), comms.NewModes(), comms.NewLogCollaborator())
	ENV.Conductor = comms.NewConductor(ENV.Device, ENV.Router)
	t.Cleanup(ENV.Router.Close)

	return link
}

func request(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Add("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	newRouter().ServeHTTP(rr, req)
	return rr
}

func TestAPI(t *testing.T) {
	Convey("the device API", t, func() {
		link := setupTestDevice(t)

		Convey("reports the idle state", func() {
			rr := request("GET", "/api/state", nil)
			So(rr.Code, ShouldEqual, http.StatusOK)

			var state comms.StatePayload
			So(json.Unmarshal(rr.Body.Bytes(), &state), ShouldBeNil)
			So(state.Navigation.Mode, ShouldEqual, "root")
			So(state.Positions, ShouldHaveLength, 10)
			So(state.Positions[0], ShouldEqual, "88")
		})

		Convey("plans without moving", func() {
			rr := request("GET", "/api/plan?text=a", nil)
			So(rr.Code, ShouldEqual, http.StatusOK)

			var plan PlanResponse
			So(json.Unmarshal(rr.Body.Bytes(), &plan), ShouldBeNil)
			So(plan.Target[0], ShouldEqual, "48")
			So(plan.Line, ShouldStartWith, "M1:")
			So(link.Lines(), ShouldBeEmpty)
		})

		Convey("renders and keeps a history", func() {
			rr := request("POST", "/api/render", RenderRequest{Text: "ab"})
			So(rr.Code, ShouldEqual, http.StatusOK)

			var res comms.RenderPayload
			So(json.Unmarshal(rr.Body.Bytes(), &res), ShouldBeNil)
			So(res.Acked, ShouldBeTrue)
			So(res.Saved, ShouldBeTrue)
			So(link.Lines(), ShouldHaveLength, 1)

			rr = request("GET", "/api/renders?limit=5", nil)
			So(rr.Code, ShouldEqual, http.StatusOK)
			var recs []store.RenderRecord
			So(json.Unmarshal(rr.Body.Bytes(), &recs), ShouldBeNil)
			So(recs, ShouldHaveLength, 1)
			So(recs[0].Text, ShouldEqual, "ab")

			So(request("GET", "/api/renders?limit=x", nil).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("accepts signals", func() {
			rr := request("POST", "/api/signal", SignalRequest{Signal: "down"})
			So(rr.Code, ShouldEqual, http.StatusOK)

			var resp SignalResponse
			So(json.Unmarshal(rr.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.Accepted, ShouldBeTrue)
			So(resp.State.Selection, ShouldEqual, "learning_select")
			ENV.Router.Wait()

			So(request("POST", "/api/signal", SignalRequest{Signal: "sideways"}).Code,
				ShouldEqual, http.StatusBadRequest)
		})
	})

	Convey("authentication is enforced once a secret is set", t, func() {
		setupTestDevice(t)
		ENV.JWT_SECRET = "testing"
		defer func() { ENV.JWT_SECRET = "" }()

		So(request("GET", "/api/state", nil).Code, ShouldEqual, http.StatusUnauthorized)
	})
}
