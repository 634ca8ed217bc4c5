// Hand-written in the shape mockgen's reflect mode produces, since this
// module doesn't run code generation: a MockSource and MockSink double for
// the two collaborator interfaces the orchestrator depends on.
package orchestrator_test

import (
	context "context"
	reflect "reflect"

	gomock "github.com/golang/mock/gomock"

	"github.com/hollowgrove/witherlocate/internal/obs"
)

type MockSource struct {
	ctrl     *gomock.Controller
	recorder *MockSourceMockRecorder
}

type MockSourceMockRecorder struct {
	mock *MockSource
}

func NewMockSource(ctrl *gomock.Controller) *MockSource {
	mock := &MockSource{ctrl: ctrl}
	mock.recorder = &MockSourceMockRecorder{mock}
	return mock
}

func (m *MockSource) EXPECT() *MockSourceMockRecorder {
	return m.recorder
}

func (m *MockSource) Observations() <-chan obs.Observation {
	ret := m.ctrl.Call(m, "Observations")
	ret0, _ := ret[0].(<-chan obs.Observation)
	return ret0
}

func (mr *MockSourceMockRecorder) Observations() *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Observations", reflect.TypeOf((*MockSource)(nil).Observations))
}

func (m *MockSource) Close() error {
	ret := m.ctrl.Call(m, "Close")
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockSourceMockRecorder) Close() *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Close", reflect.TypeOf((*MockSource)(nil).Close))
}

type MockSink struct {
	ctrl     *gomock.Controller
	recorder *MockSinkMockRecorder
}

type MockSinkMockRecorder struct {
	mock *MockSink
}

func NewMockSink(ctrl *gomock.Controller) *MockSink {
	mock := &MockSink{ctrl: ctrl}
	mock.recorder = &MockSinkMockRecorder{mock}
	return mock
}

func (m *MockSink) EXPECT() *MockSinkMockRecorder {
	return m.recorder
}

func (m *MockSink) Write(ctx context.Context, est obs.EventEstimate) error {
	ret := m.ctrl.Call(m, "Write", ctx, est)
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockSinkMockRecorder) Write(ctx, est interface{}) *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Write", reflect.TypeOf((*MockSink)(nil).Write), ctx, est)
}

func (m *MockSink) Close() error {
	ret := m.ctrl.Call(m, "Close")
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockSinkMockRecorder) Close() *gomock.Call {
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Close", reflect.TypeOf((*MockSink)(nil).Close))
}
