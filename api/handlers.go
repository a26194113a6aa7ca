package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"hydrospark/core/anomaly"
	"hydrospark/core/forecast"
	"hydrospark/core/rates"
	"hydrospark/core/series"
	"hydrospark/internal/errors"
	"hydrospark/internal/logging"
	"hydrospark/storage"
)

const dateLayout = "2006-01-02"

func (s *Server) handleCalculateBill(w http.ResponseWriter, r *http.Request) {
	var req calculateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.TypeInput, "invalid request body", err))
		return
	}
	if req.Month < 1 || req.Month > 12 {
		writeError(w, errors.Newf(errors.TypeInput, "month must be 1-12, got %d", req.Month))
		return
	}
	if req.UsageCCF < 0 {
		writeError(w, errors.Newf(errors.TypeInput, "usage_ccf must be non-negative, got %g", req.UsageCCF))
		return
	}

	bill := rates.ComputeBill(req.UsageCCF, time.Month(req.Month), s.schedule)
	writeJSON(w, http.StatusOK, bill)
}

func (s *Server) handleGenerateBill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req generateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.TypeInput, "invalid request body", err))
		return
	}
	if req.Month < 1 || req.Month > 12 {
		writeError(w, errors.Newf(errors.TypeInput, "month must be 1-12, got %d", req.Month))
		return
	}
	if req.Year < 2000 || req.Year > 2100 {
		writeError(w, errors.Newf(errors.TypeInput, "year out of range: %d", req.Year))
		return
	}

	if _, err := s.store.GetCustomer(ctx, req.CustomerID); err != nil {
		writeError(w, err)
		return
	}

	month := time.Month(req.Month)
	periodStart := time.Date(req.Year, month, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := periodStart.AddDate(0, 1, -1)

	exists, err := s.store.BillExists(ctx, req.CustomerID, periodStart, periodEnd)
	if err != nil {
		writeError(w, err)
		return
	}
	if exists {
		writeError(w, errors.Conflict("a bill already exists for this period"))
		return
	}

	readings, err := s.store.GetUsage(ctx, req.CustomerID, periodStart, periodEnd)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(readings) == 0 {
		writeError(w, errors.InsufficientData("bill generation", 1, 0))
		return
	}

	var totalUsage float64
	for _, reading := range readings {
		totalUsage += reading.UsageCCF
	}

	bill := rates.ComputeBill(totalUsage, month, s.schedule)
	record := &storage.BillRecord{
		CustomerID:  req.CustomerID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		TotalUsage:  bill.TotalUsage,
		UsageCharge: bill.UsageCharge,
		Fees:        bill.TotalFees,
		TotalAmount: bill.Total,
		Status:      "issued",
	}
	if err := s.store.SaveBill(ctx, record); err != nil {
		writeError(w, err)
		return
	}

	if err := s.bills.Put(ctx, req.CustomerID, req.Year, month, &bill); err != nil {
		logging.Warn("failed to cache generated bill", zap.Error(err))
	}

	logging.Info("bill generated",
		zap.Int64("customer_id", req.CustomerID),
		zap.String("bill_id", record.ID),
		zap.Float64("total", bill.Total))

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"bill":      record,
		"breakdown": bill,
	})
}

func (s *Server) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.TypeInput, "invalid request body", err))
		return
	}
	if req.Name == "" || req.Address == "" {
		writeError(w, errors.Input("name and address are required"))
		return
	}
	if req.CustomerType == "" {
		req.CustomerType = "residential"
	}

	customer := &storage.Customer{
		Name:         req.Name,
		Address:      req.Address,
		LocationID:   req.LocationID,
		CustomerType: req.CustomerType,
		CycleNumber:  req.CycleNumber,
	}
	if err := s.store.CreateCustomer(ctx, customer); err != nil {
		writeError(w, err)
		return
	}

	logging.Info("customer created",
		zap.Int64("customer_id", customer.ID),
		zap.String("customer_type", customer.CustomerType))
	writeJSON(w, http.StatusCreated, customer)
}

func (s *Server) handleGetUsage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	customerID, err := customerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	from := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Now().UTC().AddDate(1, 0, 0)
	if v := r.URL.Query().Get("start"); v != "" {
		if from, err = time.Parse(dateLayout, v); err != nil {
			writeError(w, errors.Newf(errors.TypeInput, "invalid start date %q", v))
			return
		}
	}
	if v := r.URL.Query().Get("end"); v != "" {
		if to, err = time.Parse(dateLayout, v); err != nil {
			writeError(w, errors.Newf(errors.TypeInput, "invalid end date %q", v))
			return
		}
	}

	if _, err := s.store.GetCustomer(ctx, customerID); err != nil {
		writeError(w, err)
		return
	}
	readings, err := s.store.GetUsage(ctx, customerID, from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, readings)
}

func (s *Server) handleAddUsage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := customerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req addUsageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.TypeInput, "invalid request body", err))
		return
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		writeError(w, errors.Newf(errors.TypeInput, "invalid date %q (want YYYY-MM-DD)", req.Date))
		return
	}
	if req.UsageCCF < 0 {
		writeError(w, errors.Newf(errors.TypeInput, "usage_ccf must be non-negative, got %g", req.UsageCCF))
		return
	}

	if _, err := s.store.GetCustomer(ctx, id); err != nil {
		writeError(w, err)
		return
	}

	reading := &storage.UsageReading{CustomerID: id, Date: date, UsageCCF: req.UsageCCF}
	if err := s.store.AddUsage(ctx, reading); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reading)
}

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := customerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := s.store.GetCustomer(ctx, id); err != nil {
		writeError(w, err)
		return
	}
	bills, err := s.store.ListBills(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bills)
}

// handleBillBreakdown serves the itemized bill breakdown for a period,
// reading through the bill cache. On a miss it recomputes from stored
// usage without persisting anything.
func (s *Server) handleBillBreakdown(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := customerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 2000 || year > 2100 {
		writeError(w, errors.Input("year query parameter is required and must be reasonable"))
		return
	}
	monthNum, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || monthNum < 1 || monthNum > 12 {
		writeError(w, errors.Input("month query parameter is required and must be 1-12"))
		return
	}
	month := time.Month(monthNum)

	if cached, err := s.bills.Get(ctx, id, year, month); err != nil {
		logging.Warn("bill cache read failed", zap.Error(err))
	} else if cached != nil {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	if _, err := s.store.GetCustomer(ctx, id); err != nil {
		writeError(w, err)
		return
	}
	periodStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := periodStart.AddDate(0, 1, -1)
	readings, err := s.store.GetUsage(ctx, id, periodStart, periodEnd)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(readings) == 0 {
		writeError(w, errors.InsufficientData("bill breakdown", 1, 0))
		return
	}

	var totalUsage float64
	for _, reading := range readings {
		totalUsage += reading.UsageCCF
	}
	bill := rates.ComputeBill(totalUsage, month, s.schedule)

	if err := s.bills.Put(ctx, id, year, month, &bill); err != nil {
		logging.Warn("failed to cache bill breakdown", zap.Error(err))
	}
	writeJSON(w, http.StatusOK, bill)
}

func (s *Server) handleDetectAnomalies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := customerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	sigma := s.sigma
	if v := r.URL.Query().Get("sigma"); v != "" {
		sigma, err = strconv.ParseFloat(v, 64)
		if err != nil || sigma <= 0 {
			writeError(w, errors.Newf(errors.TypeInput, "invalid sigma threshold %q", v))
			return
		}
	}

	obs, err := s.customerSeries(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}

	records := anomaly.Detect(obs, sigma)
	if len(records) > 0 {
		if err := s.store.SaveAnomalies(ctx, id, records); err != nil {
			writeError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"anomalies": records,
		"summary":   anomaly.Summarize(records),
	})
}

func (s *Server) handlePattern(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := customerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	obs, err := s.customerSeries(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}

	stats, err := anomaly.AnalyzePattern(obs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleForecastUsage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := customerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	days := 30
	if v := r.URL.Query().Get("days"); v != "" {
		days, err = strconv.Atoi(v)
		if err != nil || days < 1 || days > 365 {
			writeError(w, errors.Newf(errors.TypeInput, "days must be 1-365, got %q", v))
			return
		}
	}

	obs, err := s.customerSeries(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := forecast.ForecastUsage(obs, days)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleForecastBill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := customerID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 2000 || year > 2100 {
		writeError(w, errors.Input("year query parameter is required and must be reasonable"))
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, errors.Input("month query parameter is required and must be 1-12"))
		return
	}

	obs, err := s.customerSeries(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := forecast.ForecastMonthlyBill(obs, time.Month(month), year, s.schedule)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := customerID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	obs, err := s.customerSeries(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}

	insights, err := forecast.UsageInsights(obs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, insights)
}

// customerSeries verifies the customer exists and assembles their full
// observation history.
func (s *Server) customerSeries(ctx context.Context, id int64) (series.Series, error) {
	if _, err := s.store.GetCustomer(ctx, id); err != nil {
		return nil, err
	}
	from := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Now().UTC().AddDate(1, 0, 0)
	readings, err := s.store.GetUsage(ctx, id, from, to)
	if err != nil {
		return nil, err
	}
	return storage.ToSeries(readings), nil
}

func customerID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, errors.Newf(errors.TypeInput, "invalid customer id %q", raw)
	}
	return id, nil
}
