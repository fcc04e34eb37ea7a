package httpapi

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"txdash/internal/application"
	"txdash/internal/config"

	"github.com/gorilla/mux"
)

//go:embed templates/*.html
var templateFS embed.FS

var dashboardTemplate = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

type TransactionFetcher interface {
	Fetch(ctx context.Context, address string) (application.Report, error)
}

type Wallet interface {
	Connect(ctx context.Context, alerter application.Alerter) (string, bool)
	Disconnect(ctx context.Context)
	Status(ctx context.Context) application.WalletStatus
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type LinkBuilder interface {
	TxLink(hash string) string
	AddressLink(address string) string
}

type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

type Server struct {
	cfg       config.Config
	fetcher   TransactionFetcher
	wallet    Wallet
	store     Pinger
	links     LinkBuilder
	format    viewFormatter
	sessions  *sessions
	metrics   *Metrics
	buildInfo BuildInfo
}

func NewServer(cfg config.Config, fetcher TransactionFetcher, wallet Wallet, store Pinger, links LinkBuilder, metrics *Metrics, buildInfo BuildInfo) (*Server, error) {
	if fetcher == nil || wallet == nil || store == nil || links == nil {
		return nil, errors.New("http server dependencies must not be nil")
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	decimals := cfg.CurrencyDecimals
	if decimals <= 0 || decimals > application.MaxDecimals {
		decimals = application.NativeDecimals
	}
	return &Server{
		cfg:       cfg,
		fetcher:   fetcher,
		wallet:    wallet,
		store:     store,
		links:     links,
		format:    viewFormatter{decimals: int32(decimals), loc: time.Local, links: links},
		sessions:  newSessions(),
		metrics:   metrics,
		buildInfo: buildInfo,
	}, nil
}

func (s *Server) MetricsObserver() *Metrics {
	return s.metrics
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleDashboard).Methods(http.MethodGet)
	r.HandleFunc("/fetch", s.handleFetchForm).Methods(http.MethodPost)
	r.HandleFunc("/wallet/connect", s.handleWalletConnect).Methods(http.MethodPost)
	r.HandleFunc("/wallet/disconnect", s.handleWalletDisconnect).Methods(http.MethodPost)
	r.HandleFunc("/api/transactions", s.handleTransactionsAPI).Methods(http.MethodGet)
	r.HandleFunc("/api/wallet", s.handleWalletAPI).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)
	r.HandleFunc("/version", s.handleVersion).Methods(http.MethodGet)
	return r
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	page := s.buildPage(sess.state(), s.wallet.Status(r.Context()))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTemplate.Execute(w, page); err != nil {
		slog.Error("dashboard render failed", "err", err)
	}
}

func (s *Server) buildPage(state sessionState, wallet application.WalletStatus) pageView {
	page := pageView{
		Title:   "Transaction Analyzer",
		Symbol:  s.cfg.CurrencySymbol,
		Input:   state.Input,
		Error:   state.Error,
		Loading: state.Loading,
		Alerts:  state.Alerts,
		Wallet: walletView{
			Connected: wallet.Connected,
			Address:   wallet.Address,
			Short:     truncateHash(wallet.Address),
			Balance:   wallet.Balance,
		},
	}
	if wallet.Connected {
		page.Wallet.AddressLink = s.links.AddressLink(wallet.Address)
	}
	if state.Report != nil && len(state.Report.Transactions) > 0 {
		page.HasResults = true
		page.Rows = s.format.rows(state.Report.Transactions)
		page.ValuePie = buildPie(state.Report.Summary.Value)
		page.GasBars = buildBars(state.Report.Summary.Gas)
		page.TypeDonuts = buildDonuts(state.Report.Summary.Type)
	}
	return page
}

func (s *Server) handleFetchForm(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	if err := r.ParseForm(); err != nil {
		sess.reject("Please enter a valid address")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	address := r.PostFormValue("address")
	sess.setInput(address)
	if _, err := s.runFetch(r.Context(), sess, address); err != nil && application.KindOf(err) == application.KindBusy {
		sess.Alert(application.Message(err))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleTransactionsAPI(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	address := r.URL.Query().Get("address")
	sess.setInput(address)
	report, err := s.runFetch(r.Context(), sess, address)
	if err != nil {
		kind := application.KindOf(err)
		respondJSON(w, statusForKind(kind), map[string]string{
			"error": application.Message(err),
			"kind":  string(kind),
		})
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// runFetch performs one fetch for sess, refusing to start while another is in flight.
func (s *Server) runFetch(ctx context.Context, sess *session, address string) (application.Report, error) {
	if !sess.begin() {
		s.metrics.IncBusyRejected()
		return application.Report{}, application.ErrFetchInFlight
	}
	defer sess.end()

	report, err := s.fetcher.Fetch(ctx, address)
	if err != nil {
		message := application.Message(err)
		if errors.Is(err, application.ErrEmptyAddress) {
			sess.reject(message)
			return application.Report{}, err
		}
		slog.Warn("fetch failed", "address", address, "kind", application.KindOf(err), "err", err)
		sess.fail(message)
		return application.Report{}, err
	}
	sess.succeed(report)
	return report, nil
}

func statusForKind(kind application.ErrorKind) int {
	switch kind {
	case application.KindValidation:
		return http.StatusBadRequest
	case application.KindBusy:
		return http.StatusConflict
	case application.KindNetwork, application.KindAPI:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleWalletConnect(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	_, ok := s.wallet.Connect(r.Context(), sess)
	s.metrics.OnWalletConnect(ok)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleWalletDisconnect(w http.ResponseWriter, r *http.Request) {
	s.wallet.Disconnect(r.Context())
	s.metrics.IncWalletDisconnect()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleWalletAPI(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.wallet.Status(r.Context()))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		respondError(w, http.StatusServiceUnavailable, "store not ready")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	snap := s.metrics.Snapshot()

	fmt.Fprintf(w, "txdash_uptime_seconds %.0f\n", time.Since(snap.StartTime).Seconds())
	fmt.Fprintf(w, "txdash_fetch_total %d\n", snap.FetchTotal)
	kinds := make([]string, 0, len(snap.FetchErrors))
	for kind := range snap.FetchErrors {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		fmt.Fprintf(w, "txdash_fetch_errors_total{kind=%q} %d\n", kind, snap.FetchErrors[application.ErrorKind(kind)])
	}
	fmt.Fprintf(w, "txdash_transactions_total %d\n", snap.TransactionsTotal)
	fmt.Fprintf(w, "txdash_last_fetch_count %d\n", snap.LastFetchCount)
	fmt.Fprintf(w, "txdash_last_fetch_duration_seconds %.3f\n", snap.LastFetchDuration.Seconds())
	var lastFetch int64
	if !snap.LastFetchTime.IsZero() {
		lastFetch = snap.LastFetchTime.Unix()
	}
	fmt.Fprintf(w, "txdash_last_fetch_timestamp_seconds %d\n", lastFetch)
	fmt.Fprintf(w, "txdash_fetch_busy_rejected_total %d\n", snap.BusyRejected)
	fmt.Fprintf(w, "txdash_wallet_connects_total %d\n", snap.WalletConnects)
	fmt.Fprintf(w, "txdash_wallet_connect_failures_total %d\n", snap.WalletFailures)
	fmt.Fprintf(w, "txdash_wallet_disconnects_total %d\n", snap.WalletDisconnects)
	fmt.Fprintf(w, "txdash_sessions %d\n", s.sessions.len())
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.buildInfo)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
