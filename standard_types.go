package uatypes

// Standard structures from namespace 0 with their DataType and
// DefaultBinary encoding node ids.

// Argument describes a method argument.
type Argument struct {
	Name            String
	DataType        NodeID
	ValueRank       int32
	ArrayDimensions []uint32
	Description     LocalizedText
}

func (*Argument) EncodingID() ExpandedNodeID { return NewNumericExpandedNodeID("", 298) }
func (a *Argument) ByteLen(ctx *Context) int  { return EncodedLen(ctx, a) }

func (a *Argument) EncodeBinary(e *Encoder) error {
	return firstError(
		func() error { return e.WriteString(a.Name) },
		func() error { return e.WriteNodeID(a.DataType) },
		func() error { return e.WriteInt32(a.ValueRank) },
		func() error { return EncodeArray(e, a.ArrayDimensions, e.WriteUInt32) },
		func() error { return e.WriteLocalizedText(a.Description) },
	)
}

func decodeArgument(d *Decoder) (Structure, error) {
	a := &Argument{}
	var err error
	if a.Name, err = d.ReadString(); err != nil {
		return nil, err
	}
	if a.DataType, err = d.ReadNodeID(); err != nil {
		return nil, err
	}
	if a.ValueRank, err = d.ReadInt32(); err != nil {
		return nil, err
	}
	if a.ArrayDimensions, err = DecodeArray(d, d.ReadUInt32); err != nil {
		return nil, err
	}
	if a.Description, err = d.ReadLocalizedText(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Argument) EncodeJSON(ctx *Context) (map[string]any, error) {
	w := newJSONWriter(ctx)
	w.field("Name", TypeString, a.Name)
	w.field("DataType", TypeNodeID, a.DataType)
	w.field("ValueRank", TypeInt32, a.ValueRank)
	w.array("ArrayDimensions", TypeUInt32, a.ArrayDimensions)
	w.field("Description", TypeLocalizedText, a.Description)
	return w.result()
}

func decodeArgumentJSON(ctx *Context, body map[string]any) (Structure, error) {
	r := newJSONReader(ctx, body)
	a := &Argument{
		Name:            jsonGet[String](r, "Name", TypeString),
		DataType:        jsonGet[NodeID](r, "DataType", TypeNodeID),
		ValueRank:       jsonGet[int32](r, "ValueRank", TypeInt32),
		ArrayDimensions: jsonGetArray[uint32](r, "ArrayDimensions", TypeUInt32),
		Description:     jsonGet[LocalizedText](r, "Description", TypeLocalizedText),
	}
	return a, r.err
}

// EUInformation describes an engineering unit.
type EUInformation struct {
	NamespaceURI String
	UnitID       int32
	DisplayName  LocalizedText
	Description  LocalizedText
}

func (*EUInformation) EncodingID() ExpandedNodeID { return NewNumericExpandedNodeID("", 889) }

func (u *EUInformation) ByteLen(*Context) int {
	return stringLen(u.NamespaceURI) + 4 + localizedTextLen(u.DisplayName) + localizedTextLen(u.Description)
}

func (u *EUInformation) EncodeBinary(e *Encoder) error {
	return firstError(
		func() error { return e.WriteString(u.NamespaceURI) },
		func() error { return e.WriteInt32(u.UnitID) },
		func() error { return e.WriteLocalizedText(u.DisplayName) },
		func() error { return e.WriteLocalizedText(u.Description) },
	)
}

func decodeEUInformation(d *Decoder) (Structure, error) {
	u := &EUInformation{}
	var err error
	if u.NamespaceURI, err = d.ReadString(); err != nil {
		return nil, err
	}
	if u.UnitID, err = d.ReadInt32(); err != nil {
		return nil, err
	}
	if u.DisplayName, err = d.ReadLocalizedText(); err != nil {
		return nil, err
	}
	if u.Description, err = d.ReadLocalizedText(); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *EUInformation) EncodeJSON(ctx *Context) (map[string]any, error) {
	w := newJSONWriter(ctx)
	w.field("NamespaceUri", TypeString, u.NamespaceURI)
	w.field("UnitId", TypeInt32, u.UnitID)
	w.field("DisplayName", TypeLocalizedText, u.DisplayName)
	w.field("Description", TypeLocalizedText, u.Description)
	return w.result()
}

func decodeEUInformationJSON(ctx *Context, body map[string]any) (Structure, error) {
	r := newJSONReader(ctx, body)
	u := &EUInformation{
		NamespaceURI: jsonGet[String](r, "NamespaceUri", TypeString),
		UnitID:       jsonGet[int32](r, "UnitId", TypeInt32),
		DisplayName:  jsonGet[LocalizedText](r, "DisplayName", TypeLocalizedText),
		Description:  jsonGet[LocalizedText](r, "Description", TypeLocalizedText),
	}
	return u, r.err
}

// Range is a closed interval of doubles.
type Range struct {
	Low  float64
	High float64
}

func (*Range) EncodingID() ExpandedNodeID { return NewNumericExpandedNodeID("", 886) }
func (*Range) ByteLen(*Context) int        { return 16 }

func (r *Range) EncodeBinary(e *Encoder) error {
	if err := e.WriteDouble(r.Low); err != nil {
		return err
	}
	return e.WriteDouble(r.High)
}

func decodeRange(d *Decoder) (Structure, error) {
	r := &Range{}
	var err error
	if r.Low, err = d.ReadDouble(); err != nil {
		return nil, err
	}
	if r.High, err = d.ReadDouble(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Range) EncodeJSON(ctx *Context) (map[string]any, error) {
	w := newJSONWriter(ctx)
	w.field("Low", TypeDouble, r.Low)
	w.field("High", TypeDouble, r.High)
	return w.result()
}

func decodeRangeJSON(ctx *Context, body map[string]any) (Structure, error) {
	jr := newJSONReader(ctx, body)
	r := &Range{
		Low:  jsonGet[float64](jr, "Low", TypeDouble),
		High: jsonGet[float64](jr, "High", TypeDouble),
	}
	return r, jr.err
}

// EnumValueType is one entry of an enumeration's EnumValues property.
type EnumValueType struct {
	Value       int64
	DisplayName LocalizedText
	Description LocalizedText
}

func (*EnumValueType) EncodingID() ExpandedNodeID { return NewNumericExpandedNodeID("", 8251) }

func (v *EnumValueType) ByteLen(*Context) int {
	return 8 + localizedTextLen(v.DisplayName) + localizedTextLen(v.Description)
}

func (v *EnumValueType) EncodeBinary(e *Encoder) error {
	return firstError(
		func() error { return e.WriteInt64(v.Value) },
		func() error { return e.WriteLocalizedText(v.DisplayName) },
		func() error { return e.WriteLocalizedText(v.Description) },
	)
}

func decodeEnumValueType(d *Decoder) (Structure, error) {
	v := &EnumValueType{}
	var err error
	if v.Value, err = d.ReadInt64(); err != nil {
		return nil, err
	}
	if v.DisplayName, err = d.ReadLocalizedText(); err != nil {
		return nil, err
	}
	if v.Description, err = d.ReadLocalizedText(); err != nil {
		return nil, err
	}
	return v, nil
}

func (v *EnumValueType) EncodeJSON(ctx *Context) (map[string]any, error) {
	w := newJSONWriter(ctx)
	w.field("Value", TypeInt64, v.Value)
	w.field("DisplayName", TypeLocalizedText, v.DisplayName)
	w.field("Description", TypeLocalizedText, v.Description)
	return w.result()
}

func decodeEnumValueTypeJSON(ctx *Context, body map[string]any) (Structure, error) {
	r := newJSONReader(ctx, body)
	v := &EnumValueType{
		Value:       jsonGet[int64](r, "Value", TypeInt64),
		DisplayName: jsonGet[LocalizedText](r, "DisplayName", TypeLocalizedText),
		Description: jsonGet[LocalizedText](r, "Description", TypeLocalizedText),
	}
	return v, r.err
}

// KeyValuePair pairs a qualified name with an arbitrary value.
type KeyValuePair struct {
	Key   QualifiedName
	Value Variant
}

func (*KeyValuePair) EncodingID() ExpandedNodeID { return NewNumericExpandedNodeID("", 14846) }

func (p *KeyValuePair) ByteLen(ctx *Context) int {
	return qualifiedNameLen(p.Key) + p.Value.ByteLen(ctx)
}

func (p *KeyValuePair) EncodeBinary(e *Encoder) error {
	if err := e.WriteQualifiedName(p.Key); err != nil {
		return err
	}
	return e.WriteVariant(p.Value)
}

func decodeKeyValuePair(d *Decoder) (Structure, error) {
	p := &KeyValuePair{}
	var err error
	if p.Key, err = d.ReadQualifiedName(); err != nil {
		return nil, err
	}
	if p.Value, err = nested(d, d.ReadVariant); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *KeyValuePair) EncodeJSON(ctx *Context) (map[string]any, error) {
	w := newJSONWriter(ctx)
	w.field("Key", TypeQualifiedName, p.Key)
	w.field("Value", TypeVariant, p.Value)
	return w.result()
}

func decodeKeyValuePairJSON(ctx *Context, body map[string]any) (Structure, error) {
	r := newJSONReader(ctx, body)
	p := &KeyValuePair{
		Key:   jsonGet[QualifiedName](r, "Key", TypeQualifiedName),
		Value: jsonGet[Variant](r, "Value", TypeVariant),
	}
	return p, r.err
}

// RequestHeader is the common header of every service request.
type RequestHeader struct {
	AuthenticationToken NodeID
	Timestamp           DateTime
	RequestHandle       uint32
	ReturnDiagnostics   uint32
	AuditEntryID        String
	TimeoutHint         uint32
	AdditionalHeader    ExtensionObject
}

func (*RequestHeader) EncodingID() ExpandedNodeID { return NewNumericExpandedNodeID("", 391) }

func (h *RequestHeader) ByteLen(ctx *Context) int {
	return nodeIDLen(h.AuthenticationToken) + 8 + 4 + 4 + stringLen(h.AuditEntryID) + 4 + h.AdditionalHeader.ByteLen(ctx)
}

func (h *RequestHeader) EncodeBinary(e *Encoder) error {
	return firstError(
		func() error { return e.WriteNodeID(h.AuthenticationToken) },
		func() error { return e.WriteDateTime(h.Timestamp) },
		func() error { return e.WriteUInt32(h.RequestHandle) },
		func() error { return e.WriteUInt32(h.ReturnDiagnostics) },
		func() error { return e.WriteString(h.AuditEntryID) },
		func() error { return e.WriteUInt32(h.TimeoutHint) },
		func() error { return e.WriteExtensionObject(h.AdditionalHeader) },
	)
}

func readRequestHeader(d *Decoder) (*RequestHeader, error) {
	h := &RequestHeader{}
	var err error
	if h.AuthenticationToken, err = d.ReadNodeID(); err != nil {
		return nil, err
	}
	if h.Timestamp, err = d.ReadDateTime(); err != nil {
		return nil, err
	}
	if h.RequestHandle, err = d.ReadUInt32(); err != nil {
		return nil, err
	}
	if h.ReturnDiagnostics, err = d.ReadUInt32(); err != nil {
		return nil, err
	}
	if h.AuditEntryID, err = d.ReadString(); err != nil {
		return nil, err
	}
	if h.TimeoutHint, err = d.ReadUInt32(); err != nil {
		return nil, err
	}
	if h.AdditionalHeader, err = d.ReadExtensionObject(); err != nil {
		return nil, err
	}
	return h, nil
}

func decodeRequestHeader(d *Decoder) (Structure, error) {
	h, err := readRequestHeader(d)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (h *RequestHeader) EncodeJSON(ctx *Context) (map[string]any, error) {
	w := newJSONWriter(ctx)
	w.field("AuthenticationToken", TypeNodeID, h.AuthenticationToken)
	w.field("Timestamp", TypeDateTime, h.Timestamp)
	w.field("RequestHandle", TypeUInt32, h.RequestHandle)
	w.field("ReturnDiagnostics", TypeUInt32, h.ReturnDiagnostics)
	w.field("AuditEntryId", TypeString, h.AuditEntryID)
	w.field("TimeoutHint", TypeUInt32, h.TimeoutHint)
	w.field("AdditionalHeader", TypeExtensionObject, h.AdditionalHeader)
	return w.result()
}

func readRequestHeaderJSON(r *jsonReader) *RequestHeader {
	return &RequestHeader{
		AuthenticationToken: jsonGet[NodeID](r, "AuthenticationToken", TypeNodeID),
		Timestamp:           jsonGet[DateTime](r, "Timestamp", TypeDateTime),
		RequestHandle:       jsonGet[uint32](r, "RequestHandle", TypeUInt32),
		ReturnDiagnostics:   jsonGet[uint32](r, "ReturnDiagnostics", TypeUInt32),
		AuditEntryID:        jsonGet[String](r, "AuditEntryId", TypeString),
		TimeoutHint:         jsonGet[uint32](r, "TimeoutHint", TypeUInt32),
		AdditionalHeader:    jsonGet[ExtensionObject](r, "AdditionalHeader", TypeExtensionObject),
	}
}

func decodeRequestHeaderJSON(ctx *Context, body map[string]any) (Structure, error) {
	r := newJSONReader(ctx, body)
	h := readRequestHeaderJSON(r)
	return h, r.err
}

// GetEndpointsRequest asks a server for its endpoints.
type GetEndpointsRequest struct {
	RequestHeader RequestHeader
	EndpointURL   String
	LocaleIDs     []String
	ProfileURIs   []String
}

func (*GetEndpointsRequest) EncodingID() ExpandedNodeID { return NewNumericExpandedNodeID("", 428) }
func (g *GetEndpointsRequest) ByteLen(ctx *Context) int  { return EncodedLen(ctx, g) }

func (g *GetEndpointsRequest) EncodeBinary(e *Encoder) error {
	return firstError(
		func() error { return g.RequestHeader.EncodeBinary(e) },
		func() error { return e.WriteString(g.EndpointURL) },
		func() error { return EncodeArray(e, g.LocaleIDs, e.WriteString) },
		func() error { return EncodeArray(e, g.ProfileURIs, e.WriteString) },
	)
}

func decodeGetEndpointsRequest(d *Decoder) (Structure, error) {
	h, err := readRequestHeader(d)
	if err != nil {
		return nil, err
	}
	g := &GetEndpointsRequest{RequestHeader: *h}
	if g.EndpointURL, err = d.ReadString(); err != nil {
		return nil, err
	}
	if g.LocaleIDs, err = DecodeArray(d, d.ReadString); err != nil {
		return nil, err
	}
	if g.ProfileURIs, err = DecodeArray(d, d.ReadString); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *GetEndpointsRequest) EncodeJSON(ctx *Context) (map[string]any, error) {
	hdr, err := g.RequestHeader.EncodeJSON(ctx)
	if err != nil {
		return nil, err
	}
	w := newJSONWriter(ctx)
	w.m["RequestHeader"] = hdr
	w.field("EndpointUrl", TypeString, g.EndpointURL)
	w.array("LocaleIds", TypeString, g.LocaleIDs)
	w.array("ProfileUris", TypeString, g.ProfileURIs)
	return w.result()
}

func decodeGetEndpointsRequestJSON(ctx *Context, body map[string]any) (Structure, error) {
	r := newJSONReader(ctx, body)
	g := &GetEndpointsRequest{
		EndpointURL: jsonGet[String](r, "EndpointUrl", TypeString),
		LocaleIDs:   jsonGetArray[String](r, "LocaleIds", TypeString),
		ProfileURIs: jsonGetArray[String](r, "ProfileUris", TypeString),
	}
	if hdr := r.object("RequestHeader"); hdr != nil {
		g.RequestHeader = *readRequestHeaderJSON(hdr)
		if r.err == nil {
			r.err = hdr.err
		}
	}
	return g, r.err
}

// ApplicationType says whether an application is a client, a server or
// both.
type ApplicationType int32

const (
	ApplicationServer ApplicationType = iota
	ApplicationClient
	ApplicationClientAndServer
	ApplicationDiscoveryServer
)

// ApplicationDescription identifies an OPC UA application.
type ApplicationDescription struct {
	ApplicationURI      String
	ProductURI          String
	ApplicationName     LocalizedText
	ApplicationType     ApplicationType
	GatewayServerURI    String
	DiscoveryProfileURI String
	DiscoveryURLs       []String
}

func (*ApplicationDescription) EncodingID() ExpandedNodeID { return NewNumericExpandedNodeID("", 310) }
func (a *ApplicationDescription) ByteLen(ctx *Context) int  { return EncodedLen(ctx, a) }

func (a *ApplicationDescription) EncodeBinary(e *Encoder) error {
	return firstError(
		func() error { return e.WriteString(a.ApplicationURI) },
		func() error { return e.WriteString(a.ProductURI) },
		func() error { return e.WriteLocalizedText(a.ApplicationName) },
		func() error { return e.WriteInt32(int32(a.ApplicationType)) },
		func() error { return e.WriteString(a.GatewayServerURI) },
		func() error { return e.WriteString(a.DiscoveryProfileURI) },
		func() error { return EncodeArray(e, a.DiscoveryURLs, e.WriteString) },
	)
}

func readApplicationDescription(d *Decoder) (ApplicationDescription, error) {
	var a ApplicationDescription
	var err error
	if a.ApplicationURI, err = d.ReadString(); err != nil {
		return a, err
	}
	if a.ProductURI, err = d.ReadString(); err != nil {
		return a, err
	}
	if a.ApplicationName, err = d.ReadLocalizedText(); err != nil {
		return a, err
	}
	typ, err := d.ReadInt32()
	if err != nil {
		return a, err
	}
	a.ApplicationType = ApplicationType(typ)
	if a.GatewayServerURI, err = d.ReadString(); err != nil {
		return a, err
	}
	if a.DiscoveryProfileURI, err = d.ReadString(); err != nil {
		return a, err
	}
	a.DiscoveryURLs, err = DecodeArray(d, d.ReadString)
	return a, err
}

func decodeApplicationDescription(d *Decoder) (Structure, error) {
	a, err := readApplicationDescription(d)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (a *ApplicationDescription) EncodeJSON(ctx *Context) (map[string]any, error) {
	w := newJSONWriter(ctx)
	w.field("ApplicationUri", TypeString, a.ApplicationURI)
	w.field("ProductUri", TypeString, a.ProductURI)
	w.field("ApplicationName", TypeLocalizedText, a.ApplicationName)
	w.field("ApplicationType", TypeInt32, int32(a.ApplicationType))
	w.field("GatewayServerUri", TypeString, a.GatewayServerURI)
	w.field("DiscoveryProfileUri", TypeString, a.DiscoveryProfileURI)
	w.array("DiscoveryUrls", TypeString, a.DiscoveryURLs)
	return w.result()
}

func readApplicationDescriptionJSON(r *jsonReader) ApplicationDescription {
	return ApplicationDescription{
		ApplicationURI:      jsonGet[String](r, "ApplicationUri", TypeString),
		ProductURI:          jsonGet[String](r, "ProductUri", TypeString),
		ApplicationName:     jsonGet[LocalizedText](r, "ApplicationName", TypeLocalizedText),
		ApplicationType:     ApplicationType(jsonGet[int32](r, "ApplicationType", TypeInt32)),
		GatewayServerURI:    jsonGet[String](r, "GatewayServerUri", TypeString),
		DiscoveryProfileURI: jsonGet[String](r, "DiscoveryProfileUri", TypeString),
		DiscoveryURLs:       jsonGetArray[String](r, "DiscoveryUrls", TypeString),
	}
}

func decodeApplicationDescriptionJSON(ctx *Context, body map[string]any) (Structure, error) {
	r := newJSONReader(ctx, body)
	a := readApplicationDescriptionJSON(r)
	return &a, r.err
}

// CreateSessionRequest opens a session with a server.
type CreateSessionRequest struct {
	RequestHeader           RequestHeader
	ClientDescription       ApplicationDescription
	ServerURI               String
	EndpointURL             String
	SessionName             String
	ClientNonce             ByteString
	ClientCertificate       ByteString
	RequestedSessionTimeout float64
	MaxResponseMessageSize  uint32
}

func (*CreateSessionRequest) EncodingID() ExpandedNodeID { return NewNumericExpandedNodeID("", 461) }
func (c *CreateSessionRequest) ByteLen(ctx *Context) int  { return EncodedLen(ctx, c) }

func (c *CreateSessionRequest) EncodeBinary(e *Encoder) error {
	return firstError(
		func() error { return c.RequestHeader.EncodeBinary(e) },
		func() error { return c.ClientDescription.EncodeBinary(e) },
		func() error { return e.WriteString(c.ServerURI) },
		func() error { return e.WriteString(c.EndpointURL) },
		func() error { return e.WriteString(c.SessionName) },
		func() error { return e.WriteByteString(c.ClientNonce) },
		func() error { return e.WriteByteString(c.ClientCertificate) },
		func() error { return e.WriteDouble(c.RequestedSessionTimeout) },
		func() error { return e.WriteUInt32(c.MaxResponseMessageSize) },
	)
}

func decodeCreateSessionRequest(d *Decoder) (Structure, error) {
	h, err := readRequestHeader(d)
	if err != nil {
		return nil, err
	}
	c := &CreateSessionRequest{RequestHeader: *h}
	if c.ClientDescription, err = readApplicationDescription(d); err != nil {
		return nil, err
	}
	if c.ServerURI, err = d.ReadString(); err != nil {
		return nil, err
	}
	if c.EndpointURL, err = d.ReadString(); err != nil {
		return nil, err
	}
	if c.SessionName, err = d.ReadString(); err != nil {
		return nil, err
	}
	if c.ClientNonce, err = d.ReadByteString(); err != nil {
		return nil, err
	}
	if c.ClientCertificate, err = d.ReadByteString(); err != nil {
		return nil, err
	}
	if c.RequestedSessionTimeout, err = d.ReadDouble(); err != nil {
		return nil, err
	}
	if c.MaxResponseMessageSize, err = d.ReadUInt32(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *CreateSessionRequest) EncodeJSON(ctx *Context) (map[string]any, error) {
	hdr, err := c.RequestHeader.EncodeJSON(ctx)
	if err != nil {
		return nil, err
	}
	client, err := c.ClientDescription.EncodeJSON(ctx)
	if err != nil {
		return nil, err
	}
	w := newJSONWriter(ctx)
	w.m["RequestHeader"] = hdr
	w.m["ClientDescription"] = client
	w.field("ServerUri", TypeString, c.ServerURI)
	w.field("EndpointUrl", TypeString, c.EndpointURL)
	w.field("SessionName", TypeString, c.SessionName)
	w.field("ClientNonce", TypeByteString, c.ClientNonce)
	w.field("ClientCertificate", TypeByteString, c.ClientCertificate)
	w.field("RequestedSessionTimeout", TypeDouble, c.RequestedSessionTimeout)
	w.field("MaxResponseMessageSize", TypeUInt32, c.MaxResponseMessageSize)
	return w.result()
}

func decodeCreateSessionRequestJSON(ctx *Context, body map[string]any) (Structure, error) {
	r := newJSONReader(ctx, body)
	c := &CreateSessionRequest{
		ClientDescription:       jsonGetObject(r, "ClientDescription", readApplicationDescriptionJSON),
		ServerURI:               jsonGet[String](r, "ServerUri", TypeString),
		EndpointURL:             jsonGet[String](r, "EndpointUrl", TypeString),
		SessionName:             jsonGet[String](r, "SessionName", TypeString),
		ClientNonce:             jsonGet[ByteString](r, "ClientNonce", TypeByteString),
		ClientCertificate:       jsonGet[ByteString](r, "ClientCertificate", TypeByteString),
		RequestedSessionTimeout: jsonGet[float64](r, "RequestedSessionTimeout", TypeDouble),
		MaxResponseMessageSize:  jsonGet[uint32](r, "MaxResponseMessageSize", TypeUInt32),
	}
	if hdr := jsonGetObject(r, "RequestHeader", readRequestHeaderJSON); hdr != nil {
		c.RequestHeader = *hdr
	}
	return c, r.err
}

// TrustListDataType carries the certificates and CRLs of a trust list.
type TrustListDataType struct {
	SpecifiedLists      uint32
	TrustedCertificates []ByteString
	TrustedCrls         []ByteString
	IssuerCertificates  []ByteString
	IssuerCrls          []ByteString
}

func (*TrustListDataType) EncodingID() ExpandedNodeID { return NewNumericExpandedNodeID("", 12680) }

func (t *TrustListDataType) ByteLen(ctx *Context) int {
	n := 4
	for _, l := range [][]ByteString{t.TrustedCertificates, t.TrustedCrls, t.IssuerCertificates, t.IssuerCrls} {
		n += arrayLen(ctx, TypeByteString, l)
	}
	return n
}

func (t *TrustListDataType) EncodeBinary(e *Encoder) error {
	if err := e.WriteUInt32(t.SpecifiedLists); err != nil {
		return err
	}
	for _, l := range [][]ByteString{t.TrustedCertificates, t.TrustedCrls, t.IssuerCertificates, t.IssuerCrls} {
		if err := EncodeArray(e, l, e.WriteByteString); err != nil {
			return err
		}
	}
	return nil
}

func decodeTrustList(d *Decoder) (Structure, error) {
	t := &TrustListDataType{}
	var err error
	if t.SpecifiedLists, err = d.ReadUInt32(); err != nil {
		return nil, err
	}
	for _, dst := range []*[]ByteString{&t.TrustedCertificates, &t.TrustedCrls, &t.IssuerCertificates, &t.IssuerCrls} {
		if *dst, err = DecodeArray(d, d.ReadByteString); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *TrustListDataType) EncodeJSON(ctx *Context) (map[string]any, error) {
	w := newJSONWriter(ctx)
	w.field("SpecifiedLists", TypeUInt32, t.SpecifiedLists)
	w.array("TrustedCertificates", TypeByteString, t.TrustedCertificates)
	w.array("TrustedCrls", TypeByteString, t.TrustedCrls)
	w.array("IssuerCertificates", TypeByteString, t.IssuerCertificates)
	w.array("IssuerCrls", TypeByteString, t.IssuerCrls)
	return w.result()
}

func decodeTrustListJSON(ctx *Context, body map[string]any) (Structure, error) {
	r := newJSONReader(ctx, body)
	t := &TrustListDataType{
		SpecifiedLists:      jsonGet[uint32](r, "SpecifiedLists", TypeUInt32),
		TrustedCertificates: jsonGetArray[ByteString](r, "TrustedCertificates", TypeByteString),
		TrustedCrls:         jsonGetArray[ByteString](r, "TrustedCrls", TypeByteString),
		IssuerCertificates:  jsonGetArray[ByteString](r, "IssuerCertificates", TypeByteString),
		IssuerCrls:          jsonGetArray[ByteString](r, "IssuerCrls", TypeByteString),
	}
	return t, r.err
}

func firstError(steps ...func() error) error {
	for _, s := range steps {
		if err := s(); err != nil {
			return err
		}
	}
	return nil
}

var standardTypes = TypeLoaders{
	{Name: "Argument", EncodingID: NewNumericExpandedNodeID("", 298), Decode: decodeArgument, DecodeJSON: decodeArgumentJSON},
	{Name: "Range", EncodingID: NewNumericExpandedNodeID("", 886), Decode: decodeRange, DecodeJSON: decodeRangeJSON},
	{Name: "EUInformation", EncodingID: NewNumericExpandedNodeID("", 889), Decode: decodeEUInformation, DecodeJSON: decodeEUInformationJSON},
	{Name: "EnumValueType", EncodingID: NewNumericExpandedNodeID("", 8251), Decode: decodeEnumValueType, DecodeJSON: decodeEnumValueTypeJSON},
	{Name: "KeyValuePair", EncodingID: NewNumericExpandedNodeID("", 14846), Decode: decodeKeyValuePair, DecodeJSON: decodeKeyValuePairJSON},
	{Name: "RequestHeader", EncodingID: NewNumericExpandedNodeID("", 391), Decode: decodeRequestHeader, DecodeJSON: decodeRequestHeaderJSON},
	{Name: "GetEndpointsRequest", EncodingID: NewNumericExpandedNodeID("", 428), Decode: decodeGetEndpointsRequest, DecodeJSON: decodeGetEndpointsRequestJSON},
	{Name: "TrustListDataType", EncodingID: NewNumericExpandedNodeID("", 12680), Decode: decodeTrustList, DecodeJSON: decodeTrustListJSON},
	{Name: "ApplicationDescription", EncodingID: NewNumericExpandedNodeID("", 310), Decode: decodeApplicationDescription, DecodeJSON: decodeApplicationDescriptionJSON},
	{Name: "CreateSessionRequest", EncodingID: NewNumericExpandedNodeID("", 461), Decode: decodeCreateSessionRequest, DecodeJSON: decodeCreateSessionRequestJSON},
	{Name: "StructureDefinition", EncodingID: NewNumericExpandedNodeID("", 122), Decode: decodeStructureDefinition, DecodeJSON: decodeStructureDefinitionJSON},
	{Name: "EnumDefinition", EncodingID: NewNumericExpandedNodeID("", 123), Decode: decodeEnumDefinition, DecodeJSON: decodeEnumDefinitionJSON},
	{Name: "StructureDescription", EncodingID: NewNumericExpandedNodeID("", 126), Decode: decodeStructureDescription, DecodeJSON: decodeStructureDescriptionJSON},
	{Name: "EnumDescription", EncodingID: NewNumericExpandedNodeID("", 127), Decode: decodeEnumDescription, DecodeJSON: decodeEnumDescriptionJSON},
	{Name: "SimpleTypeDescription", EncodingID: NewNumericExpandedNodeID("", 15421), Decode: decodeSimpleTypeDescription, DecodeJSON: decodeSimpleTypeDescriptionJSON},
	{Name: "DataTypeSchemaHeader", EncodingID: NewNumericExpandedNodeID("", 15676), Decode: decodeDataTypeSchemaHeader, DecodeJSON: decodeDataTypeSchemaHeaderJSON},
}

// StandardTypes returns the loader group for the namespace-0 structures
// this package implements.
func StandardTypes() TypeLoaderGroup { return standardTypes }
