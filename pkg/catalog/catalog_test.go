package catalog

import (
	"errors"
	"reflect"
	"testing"
)

func TestDefaultCatalogOrder(t *testing.T) {
	c := Default()
	want := []string{OpListNamespaces, OpListPods, OpListNodes, OpListServices, OpGetClusterInfo}
	if got := c.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	// List must hand out a copy.
	ops := c.List()
	ops[0].Name = "mutated"
	if c.List()[0].Name != OpListNamespaces {
		t.Error("List() exposed internal state")
	}
}

func TestAllOperationsReadOnly(t *testing.T) {
	for _, op := range Default().List() {
		if !op.ReadOnly || op.Destructive {
			t.Errorf("%s: ReadOnly=%v Destructive=%v, want read-only", op.Name, op.ReadOnly, op.Destructive)
		}
		if op.Description == "" {
			t.Errorf("%s: empty description", op.Name)
		}
	}
}

func TestGetNotFound(t *testing.T) {
	_, err := Default().Get("delete_pods")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Get() error = %v, want *NotFoundError", err)
	}
	if nf.Name != "delete_pods" {
		t.Errorf("NotFoundError.Name = %q", nf.Name)
	}
}

func TestNewRejectsDuplicates(t *testing.T) {
	if _, err := New(ListPods, ListPods); err == nil {
		t.Error("expected error for duplicate operation")
	}
	if _, err := New(Operation{}); err == nil {
		t.Error("expected error for empty name")
	}
	bad := Operation{Name: "x", Params: []ParamDef{{Name: "e", Type: ParamTypeEnum}}}
	if _, err := New(bad); err == nil {
		t.Error("expected error for enum without values")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		op        string
		args      map[string]any
		want      Arguments
		wantParam string
	}{
		{
			name: "no arguments applies defaults",
			op:   OpListPods,
			args: nil,
			want: Arguments{"problems_only": false},
		},
		{
			name: "namespace and enum canonicalized",
			op:   OpListPods,
			args: map[string]any{"namespace": " kube-system ", "status": "running"},
			want: Arguments{"namespace": "kube-system", "status": "Running", "problems_only": false},
		},
		{
			name: "flag from string",
			op:   OpListPods,
			args: map[string]any{"problems_only": "true"},
			want: Arguments{"problems_only": true},
		},
		{
			name: "empty string counts as absent",
			op:   OpListServices,
			args: map[string]any{"namespace": "", "type": "loadbalancer"},
			want: Arguments{"type": "LoadBalancer"},
		},
		{
			name:      "unknown parameter",
			op:        OpListNamespaces,
			args:      map[string]any{"namespace": "default"},
			wantParam: "namespace",
		},
		{
			name:      "enum outside set",
			op:        OpListNodes,
			args:      map[string]any{"status": "Cordoned"},
			wantParam: "status",
		},
		{
			name:      "invalid namespace name",
			op:        OpListServices,
			args:      map[string]any{"namespace": "Billing_Team"},
			wantParam: "namespace",
		},
		{
			name:      "wrong type",
			op:        OpListPods,
			args:      map[string]any{"namespace": 42},
			wantParam: "namespace",
		},
		{
			name:      "flag not boolean",
			op:        OpListPods,
			args:      map[string]any{"problems_only": "maybe"},
			wantParam: "problems_only",
		},
	}

	c := Default()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, got, err := c.Validate(tt.op, tt.args)
			if tt.wantParam != "" {
				var ve *ValidationError
				if !errors.As(err, &ve) {
					t.Fatalf("expected *ValidationError, got %v", err)
				}
				if ve.Param != tt.wantParam {
					t.Errorf("ValidationError.Param = %q, want %q", ve.Param, tt.wantParam)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if op.Name != tt.op {
				t.Errorf("operation = %s, want %s", op.Name, tt.op)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("arguments = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestValidateRequired(t *testing.T) {
	op := Operation{Name: "get_pod", Params: []ParamDef{{Name: "name", Type: ParamTypeString, Required: true}}}
	_, err := op.Validate(map[string]any{"name": "  "})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Param != "name" {
		t.Fatalf("expected missing required error, got %v", err)
	}
}

func TestJSONSchema(t *testing.T) {
	schema := ListPods.JSONSchema()
	if schema.Type != "object" {
		t.Errorf("schema type = %q", schema.Type)
	}
	status, ok := schema.Properties["status"]
	if !ok {
		t.Fatal("status property missing")
	}
	if len(status.Enum) != len(PodPhases) {
		t.Errorf("status enum has %d values, want %d", len(status.Enum), len(PodPhases))
	}
	if schema.Properties["problems_only"].Type != "boolean" {
		t.Errorf("problems_only type = %q", schema.Properties["problems_only"].Type)
	}
	if len(schema.Required) != 0 {
		t.Errorf("required = %v, want none", schema.Required)
	}
}

func TestToMCPTool(t *testing.T) {
	tool := ListNamespaces.ToMCPTool()
	if tool.Name != OpListNamespaces {
		t.Errorf("tool name = %q", tool.Name)
	}
	if string(tool.RawInputSchema) != `{"type":"object","properties":{}}` {
		t.Errorf("parameterless tool schema = %s", tool.RawInputSchema)
	}

	pods := ListPods.ToMCPTool()
	if _, ok := pods.InputSchema.Properties["namespace"]; !ok {
		t.Error("namespace property missing from list_pods MCP tool")
	}
}

func TestDescribe(t *testing.T) {
	infos := Default().Describe()
	if len(infos) != len(Operations()) {
		t.Fatalf("Describe() returned %d operations, want %d", len(infos), len(Operations()))
	}
	if infos[1].Name != OpListPods {
		t.Errorf("infos[1].Name = %q, want %q", infos[1].Name, OpListPods)
	}
	params := infos[1].Params
	if len(params) != 3 || params[1].Name != "status" || len(params[1].Enum) != len(PodPhases) {
		t.Errorf("list_pods params = %+v", params)
	}
	if params[2].Default != false {
		t.Errorf("problems_only default = %v, want false", params[2].Default)
	}
	for _, info := range infos {
		if !info.ReadOnly {
			t.Errorf("%s is not read-only", info.Name)
		}
	}
}

func TestShellTools(t *testing.T) {
	c := ShellTools()
	want := []string{ToolAskCluster, ToolListOperations, ToolQueryHistory}
	if got := c.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	for _, name := range want {
		if _, err := Default().Get(name); err == nil {
			t.Errorf("shell tool %s is routable", name)
		}
	}
}

func TestValidateInteger(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]any
		want    int
		wantErr bool
	}{
		{name: "default", args: nil, want: DefaultHistoryLimit},
		{name: "json number", args: map[string]any{"limit": float64(3)}, want: 3},
		{name: "int", args: map[string]any{"limit": 5}, want: 5},
		{name: "string", args: map[string]any{"limit": " 7 "}, want: 7},
		{name: "fraction", args: map[string]any{"limit": 2.5}, wantErr: true},
		{name: "negative", args: map[string]any{"limit": -1}, wantErr: true},
		{name: "not a number", args: map[string]any{"limit": "ten"}, wantErr: true},
		{name: "huge json number", args: map[string]any{"limit": 1e30}, wantErr: true},
		{name: "huge int64", args: map[string]any{"limit": int64(1) << 40}, wantErr: true},
		{name: "huge string", args: map[string]any{"limit": "4294967296"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got, err := ShellTools().Validate(ToolQueryHistory, tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n := got.Int("limit", -1); n != tt.want {
				t.Errorf("limit = %d, want %d", n, tt.want)
			}
		})
	}
}
