package testutil

import (
	"bytes"
	"io"
	"net/http"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/awstesting/unit"
	"github.com/aws/aws-sdk-go/service/s3"
)

// MockS3Service returns a mocked s3.S3 service serving GetObject calls from
// objects, a map of "bucket/key" to object content. Getting an object absent
// from the map fails with a NoSuchKey error.
//
// Once all interactions with the returned service have ended, and not before
// that, ops and params can be accessed. ops and params will hold the list of
// AWS S3 API calls and their parameters. For instance, if ops[0] is "GetObject"
// then params[0] is a *s3.GetObjectInput.
func MockS3Service(objects map[string][]byte) (svc *s3.S3, ops *[]string, params *[]interface{}) {
	var m sync.Mutex

	ops = &[]string{}
	params = &[]interface{}{}

	svc = s3.New(unit.Session)
	svc.Handlers.Unmarshal.Clear()
	svc.Handlers.UnmarshalMeta.Clear()
	svc.Handlers.UnmarshalError.Clear()
	svc.Handlers.Send.Clear()
	svc.Handlers.Send.PushBack(func(r *request.Request) {
		m.Lock()
		defer m.Unlock()

		*ops = append(*ops, r.Operation.Name)
		*params = append(*params, r.Params)

		r.HTTPResponse = &http.Response{
			StatusCode: 200,
			Body:       io.NopCloser(bytes.NewReader(nil)),
		}

		in, ok := r.Params.(*s3.GetObjectInput)
		if !ok {
			return
		}

		key := aws.StringValue(in.Bucket) + "/" + aws.StringValue(in.Key)
		body, ok := objects[key]
		if !ok {
			r.HTTPResponse.StatusCode = 404
			r.Error = awserr.New(s3.ErrCodeNoSuchKey, "The specified key does not exist.", nil)
			return
		}

		out := r.Data.(*s3.GetObjectOutput)
		out.Body = io.NopCloser(bytes.NewReader(body))
		out.ContentLength = aws.Int64(int64(len(body)))
	})

	return svc, ops, params
}
