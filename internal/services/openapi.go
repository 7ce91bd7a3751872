package services

import (
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// OpenAPIService parses and serves the API description. The document is
// validated once at startup so a drifting spec fails loudly.
type OpenAPIService struct {
	doc *openapi3.T
}

func NewOpenAPIService() (*OpenAPIService, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData([]byte(openAPISpec))
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi spec: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid openapi spec: %w", err)
	}
	return &OpenAPIService{doc: doc}, nil
}

func (s *OpenAPIService) JSON() ([]byte, error) {
	return json.MarshalIndent(s.doc, "", "  ")
}

func (s *OpenAPIService) YAML() ([]byte, error) {
	data, err := json.Marshal(s.doc)
	if err != nil {
		return nil, err
	}
	var intermediate map[string]any
	if err := json.Unmarshal(data, &intermediate); err != nil {
		return nil, err
	}
	return yaml.Marshal(intermediate)
}

const openAPISpec = `
openapi: 3.0.3
info:
  title: Formgate API
  description: API-key-gated intake and email delivery for contact forms.
  version: 1.0.0
paths:
  /api/v1/send:
    post:
      summary: Submit a contact-form message for email delivery
      description: >
        Authenticated by API key (X-Api-Key header or apikey query
        parameter). The recipient list comes from the route bound to the
        key. The website field is a honeypot and must be left blank.
      security:
        - apiKeyHeader: []
        - apiKeyQuery: []
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/SendRequest'
          multipart/form-data:
            schema:
              $ref: '#/components/schemas/SendForm'
      responses:
        '200':
          description: Message accepted and delivered
        '400':
          description: Validation failed
        '401':
          description: Missing or invalid API key
        '403':
          description: Revoked key or no active email route
        '429':
          description: Rate limit exceeded
        '500':
          description: Delivery failed; the attempt is recorded on the ledger
  /api/v1/apikeys:
    get:
      summary: List the caller's API keys
      security:
        - bearerAuth: []
      parameters:
        - name: search
          in: query
          schema:
            type: string
          description: Narrow by key prefix
      responses:
        '200':
          description: Keys ordered active-first, newest-first
    post:
      summary: Issue an API key for an owned route
      description: >
        The raw secret is returned exactly once. A route can hold at most
        one active key.
      security:
        - bearerAuth: []
      responses:
        '201':
          description: Key created, raw secret included
        '400':
          description: Route already has an active key
  /api/v1/apikeys/{keyId}:
    get:
      summary: Retrieve one API key
      security:
        - bearerAuth: []
      parameters:
        - $ref: '#/components/parameters/keyId'
      responses:
        '200':
          description: The key
        '404':
          description: Not found or not owned by the caller
  /api/v1/apikeys/{keyId}/revoke:
    post:
      summary: Revoke an API key
      description: Idempotent; revoking a revoked key succeeds unchanged.
      security:
        - bearerAuth: []
      parameters:
        - $ref: '#/components/parameters/keyId'
      responses:
        '200':
          description: The revoked key
  /api/v1/routes:
    get:
      summary: List the caller's routes
      security:
        - bearerAuth: []
      responses:
        '200':
          description: Routes newest-first
    post:
      summary: Create a delivery route
      security:
        - bearerAuth: []
      responses:
        '201':
          description: Route created
        '400':
          description: Invalid channel or recipient list
  /api/v1/routes/{routeId}:
    get:
      summary: Retrieve one route
      security:
        - bearerAuth: []
      parameters:
        - $ref: '#/components/parameters/routeId'
      responses:
        '200':
          description: The route
    patch:
      summary: Partially update a route
      security:
        - bearerAuth: []
      parameters:
        - $ref: '#/components/parameters/routeId'
      responses:
        '200':
          description: The updated route
    delete:
      summary: Delete a route
      description: Keys bound to the route lose their binding but survive.
      security:
        - bearerAuth: []
      parameters:
        - $ref: '#/components/parameters/routeId'
      responses:
        '200':
          description: Route deleted
  /api/v1/messages:
    get:
      summary: List the caller's message ledger
      security:
        - bearerAuth: []
      parameters:
        - name: search
          in: query
          schema:
            type: string
          description: Match key hash fragment, recipient or status
      responses:
        '200':
          description: Messages newest-first
  /api/v1/messages/{messageId}:
    get:
      summary: Retrieve one ledger entry
      security:
        - bearerAuth: []
      parameters:
        - name: messageId
          in: path
          required: true
          schema:
            type: string
            format: uuid
      responses:
        '200':
          description: The message
  /api/v1/usage:
    get:
      summary: Retrieve the caller's usage counters
      security:
        - bearerAuth: []
      responses:
        '200':
          description: Usage counters, created lazily on first read
  /api/v1/health:
    get:
      summary: Liveness probe
      responses:
        '200':
          description: Service is up
components:
  parameters:
    keyId:
      name: keyId
      in: path
      required: true
      schema:
        type: string
        format: uuid
    routeId:
      name: routeId
      in: path
      required: true
      schema:
        type: string
        format: uuid
  securitySchemes:
    bearerAuth:
      type: http
      scheme: bearer
      bearerFormat: JWT
    apiKeyHeader:
      type: apiKey
      in: header
      name: X-Api-Key
    apiKeyQuery:
      type: apiKey
      in: query
      name: apikey
  schemas:
    SendRequest:
      type: object
      required: [visitor_email, subject, body]
      properties:
        visitor_email:
          type: string
          format: email
        subject:
          type: string
        body:
          description: Object or plain string
        image_url:
          type: string
        website:
          type: string
          description: Honeypot, must be blank
    SendForm:
      type: object
      required: [visitor_email, subject, body]
      properties:
        visitor_email:
          type: string
        subject:
          type: string
        body:
          type: string
        image_url:
          type: string
        website:
          type: string
        attachments:
          type: string
          format: binary
          description: Single file, 5 MiB max, pdf/doc/docx
`
