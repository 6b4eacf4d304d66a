package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// BillServiceName is the fully-qualified name of the BillService service.
const BillServiceName = "splitt.v1.BillService"

// Procedure paths of BillService.
const (
	BillServiceCalculateProcedure     = "/splitt.v1.BillService/Calculate"
	BillServiceCreateBillProcedure    = "/splitt.v1.BillService/CreateBill"
	BillServiceGetBillProcedure       = "/splitt.v1.BillService/GetBill"
	BillServiceListBillsProcedure     = "/splitt.v1.BillService/ListBills"
	BillServiceMutateProcedure        = "/splitt.v1.BillService/Mutate"
	BillServiceImportReceiptProcedure = "/splitt.v1.BillService/ImportReceipt"
	BillServiceUnlockProcedure        = "/splitt.v1.BillService/Unlock"
	BillServiceDeleteBillProcedure    = "/splitt.v1.BillService/DeleteBill"
)

// BillServiceHandler is implemented by the server side of BillService.
type BillServiceHandler interface {
	Calculate(context.Context, *connect.Request[CalculateRequest]) (*connect.Response[CalculateResponse], error)
	CreateBill(context.Context, *connect.Request[CreateBillRequest]) (*connect.Response[CreateBillResponse], error)
	GetBill(context.Context, *connect.Request[GetBillRequest]) (*connect.Response[GetBillResponse], error)
	ListBills(context.Context, *connect.Request[ListBillsRequest]) (*connect.Response[ListBillsResponse], error)
	Mutate(context.Context, *connect.Request[MutateRequest]) (*connect.Response[MutateResponse], error)
	ImportReceipt(context.Context, *connect.Request[ImportReceiptRequest]) (*connect.Response[ImportReceiptResponse], error)
	Unlock(context.Context, *connect.Request[UnlockRequest]) (*connect.Response[UnlockResponse], error)
	DeleteBill(context.Context, *connect.Request[DeleteBillRequest]) (*connect.Response[DeleteBillResponse], error)
}

// NewBillServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewBillServiceHandler(svc BillServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)

	handlers := map[string]http.Handler{
		BillServiceCalculateProcedure:     connect.NewUnaryHandler(BillServiceCalculateProcedure, svc.Calculate, opts...),
		BillServiceCreateBillProcedure:    connect.NewUnaryHandler(BillServiceCreateBillProcedure, svc.CreateBill, opts...),
		BillServiceGetBillProcedure:       connect.NewUnaryHandler(BillServiceGetBillProcedure, svc.GetBill, opts...),
		BillServiceListBillsProcedure:     connect.NewUnaryHandler(BillServiceListBillsProcedure, svc.ListBills, opts...),
		BillServiceMutateProcedure:        connect.NewUnaryHandler(BillServiceMutateProcedure, svc.Mutate, opts...),
		BillServiceImportReceiptProcedure: connect.NewUnaryHandler(BillServiceImportReceiptProcedure, svc.ImportReceipt, opts...),
		BillServiceUnlockProcedure:        connect.NewUnaryHandler(BillServiceUnlockProcedure, svc.Unlock, opts...),
		BillServiceDeleteBillProcedure:    connect.NewUnaryHandler(BillServiceDeleteBillProcedure, svc.DeleteBill, opts...),
	}

	return "/" + BillServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// BillServiceClient is a client for BillService.
type BillServiceClient struct {
	calculate     *connect.Client[CalculateRequest, CalculateResponse]
	createBill    *connect.Client[CreateBillRequest, CreateBillResponse]
	getBill       *connect.Client[GetBillRequest, GetBillResponse]
	listBills     *connect.Client[ListBillsRequest, ListBillsResponse]
	mutate        *connect.Client[MutateRequest, MutateResponse]
	importReceipt *connect.Client[ImportReceiptRequest, ImportReceiptResponse]
	unlock        *connect.Client[UnlockRequest, UnlockResponse]
	deleteBill    *connect.Client[DeleteBillRequest, DeleteBillResponse]
}

// NewBillServiceClient constructs a client for the BillService served at baseURL
// (for example, http://localhost:8080).
func NewBillServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *BillServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &BillServiceClient{
		calculate:     connect.NewClient[CalculateRequest, CalculateResponse](httpClient, baseURL+BillServiceCalculateProcedure, opts...),
		createBill:    connect.NewClient[CreateBillRequest, CreateBillResponse](httpClient, baseURL+BillServiceCreateBillProcedure, opts...),
		getBill:       connect.NewClient[GetBillRequest, GetBillResponse](httpClient, baseURL+BillServiceGetBillProcedure, opts...),
		listBills:     connect.NewClient[ListBillsRequest, ListBillsResponse](httpClient, baseURL+BillServiceListBillsProcedure, opts...),
		mutate:        connect.NewClient[MutateRequest, MutateResponse](httpClient, baseURL+BillServiceMutateProcedure, opts...),
		importReceipt: connect.NewClient[ImportReceiptRequest, ImportReceiptResponse](httpClient, baseURL+BillServiceImportReceiptProcedure, opts...),
		unlock:        connect.NewClient[UnlockRequest, UnlockResponse](httpClient, baseURL+BillServiceUnlockProcedure, opts...),
		deleteBill:    connect.NewClient[DeleteBillRequest, DeleteBillResponse](httpClient, baseURL+BillServiceDeleteBillProcedure, opts...),
	}
}

func (c *BillServiceClient) Calculate(ctx context.Context, req *connect.Request[CalculateRequest]) (*connect.Response[CalculateResponse], error) {
	return c.calculate.CallUnary(ctx, req)
}

func (c *BillServiceClient) CreateBill(ctx context.Context, req *connect.Request[CreateBillRequest]) (*connect.Response[CreateBillResponse], error) {
	return c.createBill.CallUnary(ctx, req)
}

func (c *BillServiceClient) GetBill(ctx context.Context, req *connect.Request[GetBillRequest]) (*connect.Response[GetBillResponse], error) {
	return c.getBill.CallUnary(ctx, req)
}

func (c *BillServiceClient) ListBills(ctx context.Context, req *connect.Request[ListBillsRequest]) (*connect.Response[ListBillsResponse], error) {
	return c.listBills.CallUnary(ctx, req)
}

func (c *BillServiceClient) Mutate(ctx context.Context, req *connect.Request[MutateRequest]) (*connect.Response[MutateResponse], error) {
	return c.mutate.CallUnary(ctx, req)
}

func (c *BillServiceClient) ImportReceipt(ctx context.Context, req *connect.Request[ImportReceiptRequest]) (*connect.Response[ImportReceiptResponse], error) {
	return c.importReceipt.CallUnary(ctx, req)
}

func (c *BillServiceClient) Unlock(ctx context.Context, req *connect.Request[UnlockRequest]) (*connect.Response[UnlockResponse], error) {
	return c.unlock.CallUnary(ctx, req)
}

func (c *BillServiceClient) DeleteBill(ctx context.Context, req *connect.Request[DeleteBillRequest]) (*connect.Response[DeleteBillResponse], error) {
	return c.deleteBill.CallUnary(ctx, req)
}
