package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// AzureBlob stores the object in Azure Blob Storage.
type AzureBlob struct {
	client    *azblob.Client
	container string
	name      string
}

func NewAzureBlob(connectionString, container, name string) (*AzureBlob, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure blob client: %w", err)
	}
	return &AzureBlob{client: client, container: container, name: name}, nil
}

func (b *AzureBlob) Location() string {
	return "azure://" + b.container + "/" + b.name
}

func (b *AzureBlob) Exists(ctx context.Context) (bool, error) {
	blobClient := b.client.ServiceClient().NewContainerClient(b.container).NewBlobClient(b.name)
	_, err := blobClient.GetProperties(ctx, nil)
	if err != nil {
		if isAzureNotFound(err) {
			return false, nil
		}
		return false, storageErr("exists", b, err)
	}
	return true, nil
}

func (b *AzureBlob) Read(ctx context.Context) ([]byte, error) {
	resp, err := b.client.DownloadStream(ctx, b.container, b.name, nil)
	if err != nil {
		if isAzureNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, storageErr("read", b, err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, storageErr("read", b, err)
	}
	return buf.Bytes(), nil
}

// Write uploads data, creating the container first if it does not exist yet.
func (b *AzureBlob) Write(ctx context.Context, data []byte) error {
	_, err := b.client.UploadBuffer(ctx, b.container, b.name, data, nil)
	if err == nil {
		return nil
	}
	if !bloberror.HasCode(err, bloberror.ContainerNotFound) {
		return storageErr("write", b, err)
	}

	if _, err := b.client.CreateContainer(ctx, b.container, nil); err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return storageErr("create container", b, err)
	}
	if _, err := b.client.UploadBuffer(ctx, b.container, b.name, data, nil); err != nil {
		return storageErr("write", b, err)
	}
	return nil
}

func isAzureNotFound(err error) bool {
	if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound, bloberror.ResourceNotFound) {
		return true
	}
	// HEAD responses carry no body, so the error code can be missing.
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}
